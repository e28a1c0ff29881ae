package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconGitBranch = "" //
	IconComment   = "●"
)

// Directory icons
var (
	IconFolderOpen   = "" //
	IconFolderClosed = "" //
)

// File type icons
var (
	IconFileDefault  = " " //
	IconFileGo       = " " //
	IconFileJS       = "󰌞 " //
	IconFileTS       = "󰛦 " //
	IconFilePython   = " " //
	IconFileMarkdown = " " //
	IconFileJSON     = " " //
	IconFileYAML     = ""  //
	IconFileTOML     = " " //
	IconFileHTML     = " " //
	IconFileCSS      = " " //
	IconFileRust     = " " //
	IconFileC        = " " //
	IconFileCPP      = " " //
	IconFileShell    = " " //
	IconFileDocker   = "󰡨 " //
	IconFileMakefile = " " //
)
