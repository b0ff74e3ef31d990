// Package scan searches many haystack files in parallel. It owns everything
// around the finders: the memory budget per worker, which algorithm a file is
// searched with, walking directories and merging the results.
//
//	files, _ := scan.Walk("/var/log", -1, nil)
//	s, _ := scan.New([]byte("panic:"),
//	    scan.WithMemoryLimit(64<<20),
//	    scan.WithAlgorithms(scan.AlgorithmList{search.BMH}),
//	    scan.WithCompression(source.Auto))
//	summary, err := s.Run(ctx, files, func(h scan.Hit) error {
//	    fmt.Printf("%s:%d\n", h.Path, h.Offset)
//	    return nil
//	})
package scan
