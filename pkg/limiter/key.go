package limiter

import "strconv"

// DefaultPrefix namespaces every Window Record key.
const DefaultPrefix = "limiter:"

// Keyname returns the storage key of the Window Record for name and a window
// of the given length, under DefaultPrefix.
//
// The name sits inside a Redis Cluster hash tag, after a fixed "n:" marker so
// the tag is never empty, and all windows of one name share a slot. The
// seconds value always follows the last ':', which keeps the mapping injective
// whatever characters name contains.
func Keyname(name string, seconds int) string {
	return keyname(DefaultPrefix, name, seconds)
}

func keyname(prefix, name string, seconds int) string {
	return prefix + "{n:" + name + "}:" + strconv.Itoa(seconds)
}
