package models

import (
	"fmt"
	"slices"
)

const (
	FolderDefault = "default"
	FolderStarred = "starred"
	FolderTrash   = "trash"
)

// folderOrder is the canonical order folders are stored and returned in.
var folderOrder = []string{FolderDefault, FolderStarred, FolderTrash}

// NormalizeFolders checks the vocabulary and returns the tags de-duplicated
// in canonical order. Default and trash may coexist.
func NormalizeFolders(folders []string) ([]string, error) {
	if len(folders) == 0 {
		return nil, fmt.Errorf("folders must not be empty")
	}
	seen := make(map[string]bool, len(folders))
	for _, f := range folders {
		if !slices.Contains(folderOrder, f) {
			return nil, fmt.Errorf("unknown folder %q", f)
		}
		seen[f] = true
	}
	out := make([]string, 0, len(seen))
	for _, f := range folderOrder {
		if seen[f] {
			out = append(out, f)
		}
	}
	return out, nil
}

func HasFolder(folders []string, f string) bool {
	return slices.Contains(folders, f)
}

func IsStarred(n Note) bool { return HasFolder(n.Folders, FolderStarred) }
func IsTrashed(n Note) bool { return HasFolder(n.Folders, FolderTrash) }

func Star(folders []string) []string {
	return canonical(append(slices.Clone(folders), FolderStarred))
}

func Unstar(folders []string) []string {
	out := without(folders, FolderStarred)
	if len(out) == 0 {
		out = []string{FolderDefault}
	}
	return canonical(out)
}

// Trash keeps the starred tag so Restore can bring it back.
func Trash(folders []string) []string {
	out := []string{FolderTrash}
	if HasFolder(folders, FolderStarred) {
		out = append(out, FolderStarred)
	}
	return canonical(out)
}

func Restore(folders []string) []string {
	return canonical(append(without(folders, FolderTrash), FolderDefault))
}

func without(folders []string, f string) []string {
	out := make([]string, 0, len(folders))
	for _, v := range folders {
		if v != f {
			out = append(out, v)
		}
	}
	return out
}

func canonical(folders []string) []string {
	out := make([]string, 0, len(folderOrder))
	for _, f := range folderOrder {
		if slices.Contains(folders, f) {
			out = append(out, f)
		}
	}
	return out
}
