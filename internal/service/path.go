package service

import "strings"

// DisallowedNameChars lists the characters rejected in file names.
const DisallowedNameChars = "#$[]*/"

// ValidateFileName rejects empty names and names containing DisallowedNameChars.
func ValidateFileName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrFileNameRequired
	}
	if strings.ContainsAny(name, DisallowedNameChars) {
		return ErrInvalidFileName
	}
	return nil
}

// NormalizeFolder turns a client folder path into the canonical parent path.
// The root folder is "". Surrounding slashes are dropped; empty, "." and ".."
// segments and segments with disallowed characters are rejected.
func NormalizeFolder(folder string) (string, error) {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return "", nil
	}
	segs := strings.Split(folder, "/")
	for _, s := range segs {
		if s == "" || s == "." || s == ".." || strings.TrimSpace(s) != s {
			return "", ErrInvalidFolder
		}
		if strings.ContainsAny(s, strings.ReplaceAll(DisallowedNameChars, "/", "")) {
			return "", ErrInvalidFolder
		}
	}
	return strings.Join(segs, "/"), nil
}

// ObjectKey is the storage key of name inside parentPath.
func ObjectKey(parentPath, name string) string {
	if parentPath == "" {
		return name
	}
	return parentPath + "/" + name
}
