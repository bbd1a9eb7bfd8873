/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package slices

import "sort"

// Index returns the element index of the string in the array
func Index(vs []string, t string) int {
	for i, v := range vs {
		if v == t {
			return i
		}
	}
	return -1
}

// Contains returns true if the target string t is in the slice, and false otherwise.
func Contains(vs []string, t string) bool {
	return Index(vs, t) >= 0
}

// AppendUnique appends t only if it is not already present.
func AppendUnique(vs []string, t string) []string {
	if Contains(vs, t) {
		return vs
	}
	return append(vs, t)
}

// SortedUnique removes duplicates and returns the result sorted.
func SortedUnique(vs []string) []string {
	dup := map[string]bool{}
	for _, v := range vs {
		dup[v] = true
	}

	var noDups []string
	for key := range dup {
		noDups = append(noDups, key)
	}
	sort.Strings(noDups)
	return noDups
}
