// Package mmapfinder is the zero-copy counterpart of package finder: the whole
// haystack is addressable at once (a read-only memory mapping or a slice the
// caller already holds), so the matchers run straight over it and none of
// the streaming buffer management is needed.
//
//	f, err := mmapfinder.Open("haystack.bin", []byte("needle"))
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	first := f.FindFirst(search.BMH)
//	for pos := range f.All(search.SIMD) {
//	    fmt.Printf("%d: %q\n", pos, f.Context(pos, 8))
//	}
//
// On unix the file is mapped with mmap(2) through golang.org/x/sys/unix; other
// platforms read it into memory once.
package mmapfinder
