//go:build !unix

package updater

import "os"

// Without flock only the in-process lock applies.
func tryLock(*os.File) (bool, error) { return true, nil }

func unlock(*os.File) {}
