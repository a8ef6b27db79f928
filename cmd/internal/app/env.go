package app

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "TASKTRACK_"

// EnvString reads a string env var with a default.
func EnvString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// EnvBool reads a bool env var with a default.
func EnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// EnvInt reads a positive int env var with a default.
func EnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// EnvInt32 reads a non-negative int32 env var with a default.
func EnvInt32(key string, def int32) int32 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil || n < 0 {
		return def
	}
	return int32(n)
}

// EnvDuration reads a duration env var with a default.
func EnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// EnvList reads a comma separated env var. Blank items are dropped.
func EnvList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// ApplyConfigFile loads a YAML file and exports its values as TASKTRACK_*
// environment variables. Nested keys are joined with "_" and upper-cased, so
//
//	http:
//	  addr: ":9000"
//
// becomes TASKTRACK_HTTP_ADDR. Variables already present in the environment win.
// It returns the keys it set, sorted.
func ApplyConfigFile(path string) ([]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	flat := make(map[string]string)
	if err := flattenYAML(flat, "", doc); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	var set []string
	for k, v := range flat {
		key := EnvPrefix + k
		if _, ok := os.LookupEnv(key); ok {
			continue
		}
		if err := os.Setenv(key, v); err != nil {
			return nil, err
		}
		set = append(set, key)
	}
	sort.Strings(set)
	return set, nil
}

func flattenYAML(out map[string]string, prefix string, node map[string]any) error {
	for k, v := range node {
		key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(k), "-", "_"))
		if key == "" {
			continue
		}
		if prefix != "" {
			key = prefix + "_" + key
		}
		switch tv := v.(type) {
		case map[string]any:
			if err := flattenYAML(out, key, tv); err != nil {
				return err
			}
		case []any:
			items := make([]string, 0, len(tv))
			for _, item := range tv {
				switch item.(type) {
				case map[string]any, []any:
					return fmt.Errorf("%s: nested lists are not supported", key)
				}
				items = append(items, fmt.Sprint(item))
			}
			out[key] = strings.Join(items, ",")
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(tv)
		}
	}
	return nil
}
