package spec

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadSpecs reads all spec files from a directory recursively.
func LoadSpecs(root string) ([]TestSpec, error) {
	var specs []TestSpec

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !isSpecFile(path) {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		for {
			var spec TestSpec
			if err := decoder.Decode(&spec); err != nil {
				if err == io.EOF {
					break
				}
				return fmt.Errorf("decode %s: %w", path, err)
			}
			if spec.Metadata.Name == "" && spec.Kind == "" && spec.APIVersion == "" && len(spec.Steps()) == 0 {
				continue
			}
			if spec.Metadata.Name == "" {
				spec.Metadata.Name = filepath.Base(path)
			}
			expanded := []TestSpec{spec}
			if len(spec.Variants) > 0 {
				expanded = expandVariants(spec)
			}
			for _, candidate := range expanded {
				if err := candidate.Validate(); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
			specs = append(specs, expanded...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return specs, nil
}

// Select keeps the specs matching suite and the include/exclude tags, in
// load order. Tags prefixed with "!" or "-" exclude.
func Select(specs []TestSpec, suite string, tags []string) []TestSpec {
	var include, exclude []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		switch {
		case tag == "":
		case strings.HasPrefix(tag, "!"), strings.HasPrefix(tag, "-"):
			exclude = append(exclude, tag[1:])
		default:
			include = append(include, tag)
		}
	}
	var out []TestSpec
	for _, s := range specs {
		if s.MatchesSuite(suite) && s.MatchesTags(include, exclude) {
			out = append(out, s)
		}
	}
	return out
}

func isSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}

func expandVariants(base TestSpec) []TestSpec {
	out := make([]TestSpec, 0, len(base.Variants))
	for i, variant := range base.Variants {
		specCopy := base
		specCopy.Variants = nil
		specCopy.Metadata = base.Metadata
		specCopy.Metadata.Name = variantName(base.Metadata.Name, variant, i)
		specCopy.Metadata.Tags = mergeTags(base.Metadata.Tags, variant.Tags)
		specCopy.Params = copyStringMap(base.Params)
		specCopy.Launch.Environment = copyStringMap(base.Launch.Environment)
		specCopy.Given = copySteps(base.Given)
		specCopy.When = copySteps(base.When)
		specCopy.Then = copySteps(base.Then)
		if len(variant.Params) > 0 {
			if specCopy.Params == nil {
				specCopy.Params = make(map[string]string, len(variant.Params))
			}
			for key, value := range variant.Params {
				if strings.TrimSpace(value) == "" {
					continue
				}
				specCopy.Params[key] = value
			}
		}
		if len(variant.StepOverrides) > 0 {
			applyStepOverrides(&specCopy, variant.StepOverrides)
		}
		out = append(out, specCopy)
	}
	return out
}

func variantName(baseName string, variant VariantSpec, index int) string {
	if name := strings.TrimSpace(variant.Name); name != "" {
		return name
	}
	if suffix := strings.TrimSpace(variant.NameSuffix); suffix != "" {
		return fmt.Sprintf("%s-%s", baseName, suffix)
	}
	if index >= 0 {
		return fmt.Sprintf("%s-%d", baseName, index+1)
	}
	return baseName
}

func mergeTags(base []string, extra []string) []string {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	add := func(tag string) {
		value := strings.TrimSpace(tag)
		if value == "" {
			return
		}
		key := strings.ToLower(value)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, value)
	}
	for _, tag := range base {
		add(tag)
	}
	for _, tag := range extra {
		add(tag)
	}
	return out
}

func copyStringMap(input map[string]string) map[string]string {
	if len(input) == 0 {
		return nil
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}

func copySteps(steps []StepSpec) []StepSpec {
	if len(steps) == 0 {
		return nil
	}
	out := make([]StepSpec, len(steps))
	for i, step := range steps {
		out[i] = step
		out[i].With = copyWithMap(step.With)
	}
	return out
}

func copyWithMap(input map[string]interface{}) map[string]interface{} {
	if len(input) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}

func applyStepOverrides(spec *TestSpec, overrides []StepOverride) {
	sections := map[Phase]*[]StepSpec{
		PhaseGiven: &spec.Given,
		PhaseWhen:  &spec.When,
		PhaseThen:  &spec.Then,
	}
	for _, override := range overrides {
		name := strings.TrimSpace(override.Name)
		if name == "" {
			continue
		}
		steps, index := findStep(sections, name)
		if steps == nil {
			phase := override.Phase
			if _, ok := sections[phase]; !ok {
				phase = PhaseThen
			}
			target := sections[phase]
			*target = append(*target, StepSpec{
				Name:   name,
				Action: override.Action,
				With:   copyWithMap(override.With),
			})
			continue
		}
		out := *steps
		if override.Replace {
			out[index] = StepSpec{
				Name:   name,
				Action: override.Action,
				With:   copyWithMap(override.With),
			}
			continue
		}
		if override.Action != "" {
			out[index].Action = override.Action
		}
		if override.With != nil {
			if out[index].With == nil {
				out[index].With = make(map[string]interface{}, len(override.With))
			}
			for key, value := range override.With {
				if value == nil {
					delete(out[index].With, key)
					continue
				}
				out[index].With[key] = value
			}
		}
	}
}

func findStep(sections map[Phase]*[]StepSpec, name string) (*[]StepSpec, int) {
	for _, phase := range []Phase{PhaseGiven, PhaseWhen, PhaseThen} {
		steps := sections[phase]
		for i := range *steps {
			if strings.EqualFold((*steps)[i].Name, name) {
				return steps, i
			}
		}
	}
	return nil, -1
}
