package shared

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LaunchFlags 是壳进程启动期读取的进程级开关。
// 这类开关（命令行 switch 的等价物）只能影响之后新建的进程/上下文，
// 对当前进程不生效，属于迟效式进程开关的固有限制。
type LaunchFlags struct {
	DisableHardwareAcceleration bool   `json:"disableHardwareAcceleration,omitempty"`
	ProxyServer                 string `json:"proxyServer,omitempty"`
}

// LaunchFlagsFile 管理 <userData>/launch-flags.json 的读写。
type LaunchFlagsFile struct {
	mu   sync.Mutex
	path string
}

// NewLaunchFlagsFile 创建启动开关文件管理器
func NewLaunchFlagsFile(path string) *LaunchFlagsFile {
	return &LaunchFlagsFile{path: path}
}

// DefaultLaunchFlagsPath 默认启动开关文件路径
func DefaultLaunchFlagsPath() string {
	root := UserDataRoot()
	if strings.TrimSpace(root) == "" {
		return "launch-flags.json"
	}
	return filepath.Join(root, "launch-flags.json")
}

// Read 读取当前开关；文件缺失返回零值。
func (f *LaunchFlagsFile) Read() (LaunchFlags, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readLocked()
}

// Mutate 读-改-写单个开关文件（原子替换）。
func (f *LaunchFlagsFile) Mutate(mutate func(flags LaunchFlags) LaunchFlags) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	flags, err := f.readLocked()
	if err != nil {
		return err
	}
	flags = mutate(flags)

	data, err := json.MarshalIndent(flags, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *LaunchFlagsFile) readLocked() (LaunchFlags, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return LaunchFlags{}, nil
		}
		return LaunchFlags{}, err
	}
	if len(data) == 0 {
		return LaunchFlags{}, nil
	}

	var flags LaunchFlags
	if err := json.Unmarshal(data, &flags); err != nil {
		// 坏文件按空处理：启动开关可重建，不值得让设置写入失败。
		return LaunchFlags{}, nil
	}
	return flags, nil
}
