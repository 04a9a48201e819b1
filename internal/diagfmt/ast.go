package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"amulet/internal/ast"
	"amulet/internal/source"
)

// ASTNodeOutput is one node of the dumped syntax tree. The same structure
// backs the pretty and the JSON renderings.
type ASTNodeOutput struct {
	Type     string            `json:"type"`
	Kind     string            `json:"kind,omitempty"`
	Span     source.Span       `json:"span"`
	Text     string            `json:"text,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Children []ASTNodeOutput   `json:"children,omitempty"`
}

// FormatASTPretty writes the tree with ├─ / └─ guides.
func FormatASTPretty(w io.Writer, builder *ast.Builder, fileID ast.FileID, fs *source.FileSet) error {
	root, err := BuildAST(builder, fileID)
	if err != nil {
		return err
	}
	header := "File"
	if path, ok := formatPath(fs, root.Span.File, PathModeAuto); ok {
		header = path
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (span: %s)\n", header, formatSpan(root.Span, fs))
	writeChildren(&sb, root.Children, "", fs)
	_, err = io.WriteString(w, sb.String())
	return err
}

// FormatASTJSON writes the tree as indented JSON.
func FormatASTJSON(w io.Writer, builder *ast.Builder, fileID ast.FileID) error {
	root, err := BuildAST(builder, fileID)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(root)
}

func writeChildren(sb *strings.Builder, nodes []ASTNodeOutput, prefix string, fs *source.FileSet) {
	for i := range nodes {
		guide, next := "├─ ", "│  "
		if i == len(nodes)-1 {
			guide, next = "└─ ", "   "
		}
		sb.WriteString(prefix + guide + nodeLabel(&nodes[i], fs) + "\n")
		writeChildren(sb, nodes[i].Children, prefix+next, fs)
	}
}

func nodeLabel(n *ASTNodeOutput, fs *source.FileSet) string {
	var sb strings.Builder
	sb.WriteString(n.Type)
	if n.Kind != "" {
		sb.WriteString(" " + n.Kind)
	}
	if n.Text != "" {
		sb.WriteString(" " + n.Text)
	}
	for _, key := range slices.Sorted(maps.Keys(n.Fields)) {
		fmt.Fprintf(&sb, " %s=%s", key, n.Fields[key])
	}
	fmt.Fprintf(&sb, " (span: %s)", formatSpan(n.Span, fs))
	return sb.String()
}

// BuildAST converts the arena representation into a nested tree.
func BuildAST(builder *ast.Builder, fileID ast.FileID) (ASTNodeOutput, error) {
	if builder == nil {
		return ASTNodeOutput{}, fmt.Errorf("no syntax tree")
	}
	file := builder.Files.Get(fileID)
	if file == nil {
		return ASTNodeOutput{}, fmt.Errorf("file %d not found", fileID)
	}
	d := dumper{b: builder}
	root := ASTNodeOutput{Type: "File", Span: file.Span}
	for _, itemID := range file.Items {
		root.Children = append(root.Children, d.item(itemID))
	}
	return root, nil
}

type dumper struct {
	b *ast.Builder
}

func (d dumper) typeName(id ast.TypeID) string {
	if t := d.b.Types.Get(id); id.IsValid() && t != nil {
		return d.b.Name(t.Name)
	}
	return ""
}

func (d dumper) item(id ast.ItemID) ASTNodeOutput {
	item := d.b.Items.Get(id)
	if item == nil {
		return ASTNodeOutput{Type: "Item", Kind: "<nil>"}
	}
	node := ASTNodeOutput{Type: "Item", Kind: item.Kind.String(), Span: item.Span}
	switch item.Kind {
	case ast.ItemFn:
		fn, _ := d.b.Items.Fn(id)
		node.Text = d.b.Name(fn.Name)
		node.Fields = map[string]string{}
		if fn.IsPub {
			node.Fields["pub"] = "true"
		}
		if ret := d.typeName(fn.ReturnType); ret != "" {
			node.Fields["returns"] = ret
		}
		for _, pid := range fn.Params {
			p := d.b.Items.FnParam(pid)
			if p == nil {
				continue
			}
			node.Children = append(node.Children, ASTNodeOutput{
				Type: "Param", Text: d.b.Name(p.Name), Span: p.Span,
				Fields: map[string]string{"type": d.typeName(p.Type)},
			})
		}
		if fn.Body.IsValid() {
			node.Children = append(node.Children, d.stmt(fn.Body))
		}
	case ast.ItemLet, ast.ItemConst:
		let, _ := d.b.Items.Let(id)
		d.fillLet(&node, let)
	}
	return node
}

func (d dumper) fillLet(node *ASTNodeOutput, let *ast.LetItem) {
	node.Text = d.b.Name(let.Name)
	node.Fields = map[string]string{}
	if let.IsMut {
		node.Fields["mut"] = "true"
	}
	if t := d.typeName(let.Type); t != "" {
		node.Fields["type"] = t
	}
	node.Children = append(node.Children, d.expr(let.Value))
}

func (d dumper) stmt(id ast.StmtID) ASTNodeOutput {
	s := d.b.Stmts.Get(id)
	if s == nil {
		return ASTNodeOutput{Type: "Stmt", Kind: "<nil>"}
	}
	node := ASTNodeOutput{Type: "Stmt", Kind: s.Kind.String(), Span: s.Span}
	switch s.Kind {
	case ast.StmtBlock:
		blk, _ := d.b.Stmts.Block(id)
		for _, ch := range blk.Stmts {
			node.Children = append(node.Children, d.stmt(ch))
		}
	case ast.StmtLet:
		let, _ := d.b.Stmts.Let(id)
		d.fillLet(&node, let)
	case ast.StmtExpr:
		es, _ := d.b.Stmts.Expr(id)
		node.Children = append(node.Children, d.expr(es.Expr))
	case ast.StmtAssign:
		as, _ := d.b.Stmts.Assign(id)
		node.Children = append(node.Children, d.expr(as.Target), d.expr(as.Value))
	case ast.StmtReturn:
		rs, _ := d.b.Stmts.Return(id)
		if rs.Expr.IsValid() {
			node.Children = append(node.Children, d.expr(rs.Expr))
		}
	case ast.StmtIf:
		is, _ := d.b.Stmts.If(id)
		node.Children = append(node.Children, d.expr(is.Cond), d.stmt(is.Then))
		if is.Else.IsValid() {
			node.Children = append(node.Children, d.stmt(is.Else))
		}
	case ast.StmtWhile:
		ws, _ := d.b.Stmts.While(id)
		node.Children = append(node.Children, d.expr(ws.Cond), d.stmt(ws.Body))
	}
	return node
}

func (d dumper) expr(id ast.ExprID) ASTNodeOutput {
	e := d.b.Exprs.Get(id)
	if !id.IsValid() || e == nil {
		return ASTNodeOutput{Type: "Expr", Kind: "<none>"}
	}
	node := ASTNodeOutput{Type: "Expr", Kind: e.Kind.String(), Span: e.Span}
	switch e.Kind {
	case ast.ExprIdent:
		ident, _ := d.b.Exprs.Ident(id)
		node.Text = d.b.Name(ident.Name)
	case ast.ExprLit:
		lit, _ := d.b.Exprs.Literal(id)
		node.Text = d.b.Name(lit.Value)
		node.Fields = map[string]string{"lit": lit.Kind.String()}
	case ast.ExprBinary:
		bin, _ := d.b.Exprs.Binary(id)
		node.Text = bin.Op.String()
	case ast.ExprUnary:
		un, _ := d.b.Exprs.Unary(id)
		node.Text = un.Op.String()
	}
	for _, ch := range d.b.Exprs.Children(id) {
		node.Children = append(node.Children, d.expr(ch))
	}
	return node
}
