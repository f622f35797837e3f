package engine

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// CookieProvider supplies the Cookie header value for upstream requests.
// It hides where credentials come from so retrieval logic never touches
// the environment or filesystem.
type CookieProvider interface {
	CookieHeader() string
}

// fileCookies serves cookies parsed once from a Netscape-format cookies.txt.
type fileCookies struct {
	header string
}

func (f *fileCookies) CookieHeader() string { return f.header }

// LoadCookieFile parses a Netscape-format cookie file into a CookieProvider.
// Returns (nil, nil) when the file does not exist — running without
// credentials is the normal case, not an error.
func LoadCookieFile(path string) (CookieProvider, error) {
	fh, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open cookie file: %w", err)
	}
	defer fh.Close()

	var pairs []string
	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// domain, include-subdomains, path, secure, expiry, name, value
		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			continue
		}
		name, value := fields[5], fields[6]
		if name == "" {
			continue
		}
		pairs = append(pairs, name+"="+value)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read cookie file: %w", err)
	}
	if len(pairs) == 0 {
		return nil, nil
	}
	return &fileCookies{header: strings.Join(pairs, "; ")}, nil
}
