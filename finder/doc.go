// Package finder implements the streaming needle finder: it pulls a haystack
// from an io.Reader through one fixed size buffer and reports the absolute
// offset of every occurrence of the needle, overlapping ones included.
//
// # Quick Start
//
//	f, err := finder.New(reader, []byte("needle"), finder.WithAlgorithm(search.BMH))
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//	for {
//	    pos, err := f.Next()
//	    if err == finder.Done {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(pos)
//	}
//
// or with range-over-func:
//
//	for pos, err := range f.All() { ... }
//
// # Memory
//
// The buffer holds bufferSize + len(needle) - 1 bytes and
// is taken from a shared byte pool; Close hands it back. The reported offsets
// do not depend on how the reader splits the stream into reads.
package finder
