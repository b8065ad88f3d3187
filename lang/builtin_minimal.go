//go:build minimal

package lang

func registerExtended(*Registry) error { return nil }
