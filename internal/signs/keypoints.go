// Package signs generates town sign models from a map's keypoint file: one
// label image and one pair of retextured start/end sign models per town.
package signs

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/Faultbox/signmaker/pkg/encoding"
)

// Keypoint types that get a sign.
var townTypes = map[string]bool{
	"namecity":    true,
	"namevillage": true,
}

// CollectTownNames scans a keypoint description and returns the names of
// city and village keypoints in file order. A keypoint's name line must come
// before its type line, as in files exported by the terrain tools:
//
//	name="Kavala";
//	type="NameCity";
func CollectTownNames(r io.Reader) ([]string, error) {
	var towns []string
	var pending string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if v, ok := keypointValue(line, "name"); ok {
			pending = v
			continue
		}
		if v, ok := keypointValue(line, "type"); ok && townTypes[strings.ToLower(v)] {
			towns = append(towns, pending)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning keypoints")
	}
	return towns, nil
}

// keypointValue extracts v from a `key="v";` line.
func keypointValue(line, key string) (string, bool) {
	prefix := key + `="`
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	v := strings.TrimPrefix(line, prefix)
	v = strings.TrimSuffix(v, `";`)
	return v, true
}

// LoadTownNames reads town names from a keypoint file.
func LoadTownNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening keypoints")
	}
	defer f.Close()

	towns, err := CollectTownNames(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return towns, nil
}

// MapName derives the map name from a keypoint file path ("altis.hpp" -> "altis").
func MapName(keypointsPath string) string {
	return strings.TrimSuffix(filepath.Base(keypointsPath), ".hpp")
}

// FileName turns a town name into the identifier used for its files and
// config entries: transliterated to ASCII, spaces replaced by underscores.
func FileName(town string) string {
	return strings.ReplaceAll(encoding.ASCIIFold(town), " ", "_")
}
