package shared

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SafeJoin 将 baseDir 与 rel 连接，并拒绝路径穿越。
//
// 典型用途是把下载文件名落到下载目录里，避免 "../x"、绝对路径等逃逸 baseDir 的情况。
func SafeJoin(baseDir, rel string) (string, error) {
	target := filepath.Join(baseDir, rel)
	baseDirClean := filepath.Clean(baseDir)
	targetClean := filepath.Clean(target)
	if !strings.HasPrefix(targetClean, baseDirClean+string(os.PathSeparator)) && targetClean != baseDirClean {
		return "", fmt.Errorf("invalid path traversal detected: %s", rel)
	}
	return targetClean, nil
}
