package gitlib

import (
	"context"

	git2go "github.com/libgit2/git2go/v34"
)

// File is a blob reachable from a tree, addressed by its full path.
type File struct {
	Path string
	Hash Hash
	repo *Repository
}

// Contents returns the file contents.
func (f *File) Contents(ctx context.Context) ([]byte, error) {
	blob, err := f.repo.LookupBlob(ctx, f.Hash)
	if err != nil {
		return nil, err
	}
	defer blob.Free()

	// Copy out: the backing array belongs to libgit2 and dies with the blob.
	data := make([]byte, len(blob.Contents()))
	copy(data, blob.Contents())

	return data, nil
}

// Size returns the blob size without materializing the contents.
func (f *File) Size(ctx context.Context) (int64, error) {
	blob, err := f.repo.LookupBlob(ctx, f.Hash)
	if err != nil {
		return 0, err
	}
	defer blob.Free()

	return blob.Size(), nil
}

// TreeFiles returns all blobs reachable from the tree, in tree order,
// with slash-joined paths relative to the tree root.
func TreeFiles(repo *Repository, tree *Tree) ([]*File, error) {
	var files []*File

	err := walkTree(repo, tree, "", func(path string, entry *TreeEntry) error {
		files = append(files, &File{
			Path: path,
			Hash: entry.Hash(),
			repo: repo,
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// walkTree recursively walks a tree and calls the callback for each blob entry.
func walkTree(repo *Repository, tree *Tree, prefix string, cb func(path string, entry *TreeEntry) error) error {
	count := tree.EntryCount()

	for i := range count {
		entry := tree.EntryByIndex(i)
		if entry == nil {
			continue
		}

		walkErr := processTreeEntry(repo, entry, prefix, cb)
		if walkErr != nil {
			return walkErr
		}
	}

	return nil
}

// processTreeEntry handles a single tree entry, either calling cb for blobs or recursing for subtrees.
func processTreeEntry(repo *Repository, entry *TreeEntry, prefix string, cb func(path string, entry *TreeEntry) error) error {
	path := entry.Name()
	if prefix != "" {
		path = prefix + "/" + path
	}

	if entry.IsBlob() {
		return cb(path, entry)
	}

	if entry.Type() != git2go.ObjectTree {
		return nil
	}

	subtree, lookupErr := repo.LookupTree(entry.Hash())
	if lookupErr != nil {
		return nil // Skip entries we can't look up.
	}
	defer subtree.Free()

	return walkTree(repo, subtree, path, cb)
}
