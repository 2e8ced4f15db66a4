package history

import (
	"encoding/json"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// SlotDiff renders the change between two values as patch text, computed on
// their indented JSON form. Identical values produce "".
func SlotDiff(before, after any) (string, error) {
	a, err := json.MarshalIndent(before, "", "  ")
	if err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(after, "", "  ")
	if err != nil {
		return "", err
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(a), string(b), false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	if len(diffs) == 1 && diffs[0].Type == diffmatchpatch.DiffEqual {
		return "", nil
	}
	patches := dmp.PatchMake(string(a), diffs)
	return dmp.PatchToText(patches), nil
}
