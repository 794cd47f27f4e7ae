package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// KeyLister 能列出已保存键的存储
type KeyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

var _ KeyLister = (*FileStore)(nil)

// FileStore 每个键一个 JSON 文件
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "create store directory")
	}
	return &FileStore{dir: dir}, nil
}

// Path 键对应的文件路径；键中除字母数字和 ._- 以外的字符替换为 _
func (s *FileStore) Path(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		}
		return '_'
	}, key)
	return filepath.Join(s.dir, name+".json")
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable("get", key, err)
	}
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, Unavailable("get", key, err)
	}
	return data, nil
}

// Keys 目录下已保存的键（即清洗后的文件名），按字典序
func (s *FileStore) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable("keys", "", err)
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, Unavailable("keys", "", err)
	}
	var keys []string
	for _, ent := range entries {
		name := ent.Name()
		// 临时文件没有 .json 后缀
		if ent.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	return keys, nil
}

func (s *FileStore) Set(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return Unavailable("set", key, err)
	}
	if err := AtomicWriteFile(s.Path(key), data, 0644); err != nil {
		return Unavailable("set", key, err)
	}
	return nil
}
