package scan

// Budget splits memoryLimit bytes of buffer between workers. A zero limit
// runs a single worker; a limit smaller than maxWorkers shrinks the pool so
// every worker still gets at least one byte. perWorker is never below 1.
func Budget(memoryLimit, maxWorkers int) (workers, perWorker int) {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	switch {
	case memoryLimit <= 0:
		workers = 1
	case memoryLimit < maxWorkers:
		workers = memoryLimit
	default:
		workers = maxWorkers
	}

	perWorker = memoryLimit / workers
	if perWorker < 1 {
		perWorker = 1
	}
	return workers, perWorker
}
