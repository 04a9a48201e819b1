// Package fuzztests houses Go fuzz harnesses that exercise the amulet
// pipeline (source -> lexer -> parser -> sema -> emit). Their goal is to
// smoke test robustness and guard against panics or hangs on arbitrary input.
//
// Назначение: загрузить байты в FileSet и прогнать через все стадии.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
