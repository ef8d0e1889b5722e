package utils

// StringNotEmptyCoalesce returns the first non-empty argument.
func StringNotEmptyCoalesce(args ...string) string {
	for _, elem := range args {
		if len(elem) > 0 {
			return elem
		}
	}

	return ""
}
