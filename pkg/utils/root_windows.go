package utils

// CheckRoot always succeeds on Windows, which has no privileged port range.
func (defaultRootChecker) CheckRoot() (bool, error) {
	return true, nil
}
