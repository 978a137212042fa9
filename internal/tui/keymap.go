package tui

// Key bindings handled in handleKey.
const (
	KeyQuit      = "q"
	KeyCtrlC     = "ctrl+c"
	KeyOpen      = "o"
	KeyLevel     = "l"
	KeySummarize = "s"
	KeyChat      = "c"
	KeyClearChat = "x"
	KeyReset     = "R"
	KeyExport    = "e"
)
