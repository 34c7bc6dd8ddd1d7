package rules

import (
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/tidyup/pkg/logging"
	"github.com/arthur-debert/tidyup/pkg/types"
)

const megabyte = 1024 * 1024

var errNotAList = errors.New("rule file format invalid: expected a list of rules")

// Load reads the rule file at path and returns the validated, priority-sorted
// rule list. It never fails the run: a missing file, a parse error or a
// top-level structure that is not a list all degrade to an empty list so the
// default-mapping behavior takes over. Malformed entries are dropped
// individually with a warning.
func Load(fsys types.FS, path string) []Rule {
	logger := logging.GetLogger("rules")

	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info().Str("path", path).Msg("No rule file found, proceeding with default behavior")
		} else {
			logger.Error().Err(err).Str("path", path).Msg("Failed to read rule file, proceeding with default behavior")
		}
		return nil
	}

	rawRules, err := decodeRuleList(data, path)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Failed to parse rule file, proceeding with default behavior")
		return nil
	}

	ruleList := make([]Rule, 0, len(rawRules))
	for i, raw := range rawRules {
		rule, ok := buildRule(i, raw, logger)
		if !ok {
			continue
		}
		ruleList = append(ruleList, rule)
	}

	// Descending by priority; stable so equal priorities keep source order.
	sort.SliceStable(ruleList, func(i, j int) bool {
		return ruleList[i].Priority > ruleList[j].Priority
	})

	logger.Info().Int("rules", len(ruleList)).Str("path", path).Msg("Loaded custom rules")
	return ruleList
}

// decodeRuleList parses the raw bytes into a list of loosely-typed rule
// objects. The format is chosen by file extension; JSON is the default.
// TOML has no top-level arrays, so TOML rule files use [[rules]] tables.
func decodeRuleList(data []byte, path string) ([]map[string]interface{}, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var top interface{}
		if err := yaml.Unmarshal(data, &top); err != nil {
			return nil, err
		}
		return coerceRuleList(top)
	case ".toml":
		var doc struct {
			Rules []map[string]interface{} `toml:"rules"`
		}
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		if doc.Rules == nil {
			return nil, errNotAList
		}
		return doc.Rules, nil
	default:
		var top interface{}
		if err := json.Unmarshal(data, &top); err != nil {
			return nil, err
		}
		return coerceRuleList(top)
	}
}

func coerceRuleList(top interface{}) ([]map[string]interface{}, error) {
	items, ok := top.([]interface{})
	if !ok {
		return nil, errNotAList
	}
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		// Non-object entries pass through as nil and are dropped with a
		// warning during validation, like any other malformed entry.
		obj, _ := item.(map[string]interface{})
		out = append(out, obj)
	}
	return out, nil
}

// buildRule validates one raw rule object. Entries lacking usable filters or
// action keys are dropped with a warning; the rest proceed.
func buildRule(index int, raw map[string]interface{}, logger zerolog.Logger) (Rule, bool) {
	if raw == nil {
		logger.Warn().Int("index", index).Msg("Rule is not an object, skipping")
		return Rule{}, false
	}

	filtersRaw, filtersOK := raw["filters"].(map[string]interface{})
	actionRaw, actionOK := raw["action"].(map[string]interface{})
	if !filtersOK || !actionOK {
		logger.Warn().Int("index", index).Msg("Rule is malformed (missing 'filters' or 'action'), skipping")
		return Rule{}, false
	}

	rule := Rule{
		Name:     stringValue(raw["name"]),
		Priority: intValue(raw["priority"]),
		Action: Action{
			MoveTo:       stringValue(actionRaw["move_to"]),
			TargetFolder: stringValue(actionRaw["target_folder"]),
			RenamePrefix: stringValue(actionRaw["rename_prefix"]),
			DeleteFile:   boolValue(actionRaw["delete_file"]),
		},
	}

	// Deterministic filter order for evaluation and logging.
	names := make([]string, 0, len(filtersRaw))
	for name := range filtersRaw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rule.Filters = append(rule.Filters, buildFilter(rule.DisplayName(), name, filtersRaw[name], logger))
	}

	return rule, true
}

// buildFilter normalizes a single named predicate. Unknown names and
// malformed values produce filters that never match.
func buildFilter(ruleName, name string, value interface{}, logger zerolog.Logger) Filter {
	f := Filter{RawName: name}

	switch name {
	case "extensions":
		f.Kind = FilterExtensions
		f.Extensions = extensionList(value)
		if len(f.Extensions) == 0 {
			f.Invalid = true
			logger.Warn().Str("rule", ruleName).Interface("value", value).
				Msg("Invalid value for extensions filter")
		}
	case "filename_contains":
		f.Kind = FilterNameContains
		f.Pattern = strings.ToLower(stringValue(value))
	case "filename_starts_with":
		f.Kind = FilterNameStartsWith
		f.Pattern = strings.ToLower(stringValue(value))
	case "filename_ends_with":
		f.Kind = FilterNameEndsWith
		f.Pattern = strings.ToLower(stringValue(value))
	case "min_size_mb":
		f.Kind = FilterMinSizeMB
		mb, ok := floatValue(value)
		if !ok {
			f.Invalid = true
			logger.Warn().Str("rule", ruleName).Interface("value", value).
				Msg("Invalid size value for min_size_mb filter")
			break
		}
		f.SizeBytes = int64(mb * megabyte)
	case "older_than_days":
		f.Kind = FilterOlderThanDays
		f.Days, f.Invalid = daysValue(value)
		if f.Invalid {
			logger.Warn().Str("rule", ruleName).Interface("value", value).
				Msg("Invalid day value for older_than_days filter")
		}
	case "newer_than_days":
		f.Kind = FilterNewerThanDays
		f.Days, f.Invalid = daysValue(value)
		if f.Invalid {
			logger.Warn().Str("rule", ruleName).Interface("value", value).
				Msg("Invalid day value for newer_than_days filter")
		}
	default:
		f.Kind = FilterUnknown
		logger.Warn().Str("rule", ruleName).Str("filter", name).
			Msg("Unsupported filter type, it will never match")
	}

	return f
}

func daysValue(value interface{}) (days float64, invalid bool) {
	d, ok := floatValue(value)
	if !ok {
		return 0, true
	}
	return d, false
}

// extensionList accepts a single string or a list of strings, each
// dot-stripped and lowercased.
func extensionList(value interface{}) []string {
	switch v := value.(type) {
	case string:
		return []string{types.NormalizeExt(v)}
	case []interface{}:
		exts := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil
			}
			exts = append(exts, types.NormalizeExt(s))
		}
		return exts
	default:
		return nil
	}
}

func stringValue(value interface{}) string {
	s, _ := value.(string)
	return s
}

func boolValue(value interface{}) bool {
	b, _ := value.(bool)
	return b
}

// intValue tolerates the numeric types the three decoders produce.
func intValue(value interface{}) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case uint64:
		return int(v)
	default:
		return 0
	}
}

// floatValue tolerates integers, floats and numeric strings.
func floatValue(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
