package gitrepo

import "errors"

// ErrNotWorkingTree is returned for a directory that exists but holds no git working tree.
var ErrNotWorkingTree = errors.New("not a git working tree")
