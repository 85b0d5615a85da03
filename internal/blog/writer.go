package blog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

const (
	ByPostFile   = "data_by_post.csv"
	BySymbolFile = "data_by_symbol.csv"
	BackupFile   = "posts_contents.json"
)

// WriteByPost writes one row per post. matched_products is a JSON array of
// [symbol, name] pairs.
func WriteByPost(w io.Writer, posts []Post) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "post_title", "post_url", "matched_products_num", "matched_products"}); err != nil {
		return err
	}
	for _, p := range posts {
		pairs := make([][2]string, len(p.Matched))
		for i, m := range p.Matched {
			pairs[i] = [2]string{m.Symbol, m.Name}
		}
		matched, err := json.Marshal(pairs)
		if err != nil {
			return err
		}
		if err := cw.Write([]string{p.Timestamp, p.Title, p.URL, strconv.Itoa(len(p.Matched)), string(matched)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBySymbol writes one row per (post, matched product).
func WriteBySymbol(w io.Writer, posts []Post) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "p_symbol", "p_name", "post_title", "post_url"}); err != nil {
		return err
	}
	for _, p := range posts {
		for _, m := range p.Matched {
			if err := cw.Write([]string{p.Timestamp, m.Symbol, m.Name, p.Title, p.URL}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

type backupEntry struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// WriteBackup writes {title: {url, content}} for every post.
func WriteBackup(w io.Writer, posts []Post) error {
	backup := make(map[string]backupEntry, len(posts))
	for _, p := range posts {
		backup[p.Title] = backupEntry{URL: p.URL, Content: p.Content}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(backup)
}

// SaveAll writes the two tables and the backup into dir.
func SaveAll(dir string, posts []Post) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for name, write := range map[string]func(io.Writer, []Post) error{
		ByPostFile:   WriteByPost,
		BySymbolFile: WriteBySymbol,
		BackupFile:   WriteBackup,
	} {
		if err := writeFile(filepath.Join(dir, name), posts, write); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, posts []Post, write func(io.Writer, []Post) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, posts); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
