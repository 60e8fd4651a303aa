package gitlib

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// ErrRemoteNotSupported is returned when a remote repository URI is provided.
var ErrRemoteNotSupported = errors.New("remote repositories not supported")

var scpLikeURI = regexp.MustCompile(`^[A-Za-z]\w*@[A-Za-z0-9][\w.]*:`)

// LoadRepository opens a local git repository. Returns an error for remote URIs.
func LoadRepository(uri string) (*Repository, error) {
	if strings.Contains(uri, "://") || scpLikeURI.MatchString(uri) {
		return nil, fmt.Errorf("%w: %s", ErrRemoteNotSupported, uri)
	}

	uri = strings.TrimSuffix(uri, string(os.PathSeparator))

	repository, err := OpenRepository(uri)
	if err != nil {
		return nil, fmt.Errorf("load repository %s: %w", uri, err)
	}

	return repository, nil
}
