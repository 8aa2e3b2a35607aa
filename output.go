package gg

import "fmt"

// SaveOutput persists an output tree — whatever a thunk body returned, or
// the CLI-constructed root Thunk in coordinator mode — to the back-end
// store, pinning it at destPath. A MultiOutput map is saved member-wise,
// each entry under its own declared output name rather than destPath, since
// a gg-create-thunk-static invocation names each member output explicitly
// (spec.md §8 scenario 4: "the worker writes both files").
func SaveOutput(rt *Runtime, tree any, destPath string) (Hash, error) {
	switch v := tree.(type) {
	case *Value:
		return rt.Save(v, destPath)
	case *Thunk:
		return Serialize(rt, v, destPath)
	case *ThunkOutput:
		return Serialize(rt, v.Thunk, destPath)
	case map[string]any:
		var last Hash
		for name, member := range v {
			h, err := SaveOutput(rt, member, name)
			if err != nil {
				return "", fmt.Errorf("gg: save output %q: %w", name, err)
			}
			last = h
		}
		return last, nil
	default:
		return "", fmt.Errorf("gg: save output: unrecognized output tree type %T", tree)
	}
}
