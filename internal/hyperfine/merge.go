package hyperfine

// Merge concatenates the export files in the order given. Results
// benchmarked under a commit parameter come back with their command
// tagged command@commit. Any unreadable file, or one without a results
// array, aborts the merge.
func Merge(paths []string) (*Report, error) {
	merged := &Report{}
	for _, path := range paths {
		rep, err := Load(path)
		if err != nil {
			return nil, err
		}
		for i := range rep.Results {
			rep.Results[i].TagCommit()
		}
		merged.Results = append(merged.Results, rep.Results...)
	}
	return merged, nil
}
