package constants

import (
	"sort"
	"strings"
)

// WorkbookExtensions holds the spreadsheet extensions accepted for upload.
var WorkbookExtensions = map[string]struct{}{
	"xls":  {},
	"xlsx": {},
	"xlsm": {},
	"xltx": {},
	"xltm": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// WorkbookExtList renders the accepted extensions as ".a/.b".
func WorkbookExtList() string {
	exts := make([]string, 0, len(WorkbookExtensions))
	for e := range WorkbookExtensions {
		exts = append(exts, "."+e)
	}
	sort.Strings(exts)
	return strings.Join(exts, "/")
}
