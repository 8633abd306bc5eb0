// Package fs abstracts the file operations of the local archive store so tests can
// inject I/O failures.
//
// Production code uses fs.Default (which is [LocalFS]):
//
//	f, err := fs.Default.Create(path)
//
// Tests wrap it in [FaultyFS]:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp-", fs.Fault{FailOnSync: true})
//
// Operations take no context.Context: local file syscalls are not interruptible.
// Remote stores live in blobstore and do take one.
package fs
