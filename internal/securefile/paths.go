package securefile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// EnvVar selects the data subfolder: local/, develop/ or none for production.
const EnvVar = "EL_ENV"

func EnvFolder() (string, error) {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(EnvVar)))
	switch raw {
	case "", "prod", "production":
		return "", nil
	case "local":
		return "local", nil
	case "dev", "develop", "development":
		return "develop", nil
	default:
		return "", errors.Newf("invalid %s %q (allowed: local, develop, prod)", EnvVar, raw)
	}
}

// PathCandidates lists where app may keep filename, most preferred first:
// $SNAP_REAL_HOME/.config, $HOME/.config, then os.UserConfigDir.
func PathCandidates(app, filename string) ([]string, error) {
	if app == "" || filename == "" {
		return nil, errors.New("app and filename must not be empty")
	}
	env, err := EnvFolder()
	if err != nil {
		return nil, err
	}

	var out []string
	seen := map[string]bool{}
	add := func(parts ...string) {
		p := filepath.Join(parts...)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, home := range []string{os.Getenv("SNAP_REAL_HOME"), os.Getenv("HOME")} {
		if home != "" {
			add(home, ".config", app, env, filename)
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		add(dir, app, env, filename)
	} else if len(out) == 0 {
		return nil, errors.Wrap(err, "user config dir")
	}
	return out, nil
}

// DataPath picks the first candidate whose file already exists, or the first
// candidate when none does.
func DataPath(app, filename string) (string, error) {
	paths, err := PathCandidates(app, filename)
	if err != nil {
		return "", err
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return paths[0], nil
}
