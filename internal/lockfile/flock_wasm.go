//go:build js && wasm

package lockfile

import "os"

// wasm runs a single process, so there is nobody to contend with.

func FlockSharedNonBlock(*os.File) error    { return nil }
func FlockExclusiveNonBlock(*os.File) error { return nil }
func FlockUnlock(*os.File) error            { return nil }
