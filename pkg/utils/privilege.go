package utils

// RootChecker reports whether the process may bind privileged ports
type RootChecker interface {
	CheckRoot() (bool, error)
}

type defaultRootChecker struct{}

// Checker is consulted by CheckRoot. Tests swap it with SetChecker.
var Checker RootChecker = &defaultRootChecker{}

func SetChecker(c RootChecker) { Checker = c }

// ResetChecker puts the OS-backed checker back
func ResetChecker() { Checker = &defaultRootChecker{} }

// CheckRoot asks the active Checker
func CheckRoot() (bool, error) {
	return Checker.CheckRoot()
}
