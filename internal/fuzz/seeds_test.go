package fuzztests

import "testing"

const (
	maxFuzzInput = 1 << 16 // 64 KiB
)

var languageSeeds = []string{
	"",
	"fn main() {}\n",
	`const LIMIT = 10;
let mut total = 0;

fn add(a: int, b: int) -> int {
    return a + b;
}

fn main() {
    let mut i = 0;
    while i < LIMIT {
        if i % 2 == 0 {
            total = add(total, i);
        } else if i == 7 {
            break;
        } else {
            i = i + 1;
            continue;
        }
        i = i + 1;
    }
    print(total);
}
`,
	`fn greet(name: string) -> string {
    return "Hello, " + name + "!\n";
}
fn main() { print(greet("fuzz")); print(1.5 * 2.0); print(!true || false); }
`,
	"fn f(x: float) -> bool { return -x >= 0.0; }\nfn main() { print(f(1_000.25)); }\n",
	// сломанный ввод: восстановление после ошибок
	"fn main() { let x: int = 1\nlet y: int = 2; }",
	"fn main() { x + y\nlet z: int = 3; }",
	"fn f() { { { { } } } }",
	"fn main() { { { {",
	"fn main() { print((1 + 2); if x { y = ; } else { while { } }\n",
	"fn (a: int) -> { return; }",
	"let = ;;; fn main() { print(\"unterminated); }",
	"fn main() { let s = \"bad escape \\q\"; let n = 0x; let m = 1__2; }",
	"@ # $ fn main() { 1 +* 2; }",
	"/* unterminated comment fn main() {}",
}

func addCorpusSeeds(f *testing.F) {
	for _, seed := range languageSeeds {
		f.Add([]byte(seed))
	}
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

// truncateForLog truncates input for logging purposes
func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(append([]byte(nil), input[:maxLen]...), "..."...)
}
