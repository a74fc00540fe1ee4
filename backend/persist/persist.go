// Package persist 管理 browser-settings 存储的 JSON 快照。
//
// 快照加载是 fail-open 的：文件缺失返回空状态，文件损坏或版本不兼容返回错误，
// 由调用方（main）备份原文件后以内存默认值继续启动，不中断进程。
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"strix/backend/domain"
)

// SchemaVersion 当前架构版本
const SchemaVersion = 1

// ErrSchemaTooNew 快照由更新版本写出，拒绝解析（避免静默丢字段后覆盖写回）
var ErrSchemaTooNew = errors.New("snapshot schema version is newer than this build")

// Load 加载状态快照。
// 文件不存在或为空视为首次启动，返回空状态且无错误。
func Load(path string) (domain.ShellState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.ShellState{SchemaVersion: SchemaVersion}, nil
		}
		return domain.ShellState{}, err
	}

	if len(data) == 0 {
		return domain.ShellState{SchemaVersion: SchemaVersion}, nil
	}

	var state domain.ShellState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.ShellState{}, fmt.Errorf("parse snapshot: %w", err)
	}

	// schemaVersion 缺失（0）按 v1 处理：早期版本未写该字段。
	// 未知键由 json.Unmarshal 自然忽略，缺失键由设置层的默认值合并兜底。
	if state.SchemaVersion > SchemaVersion {
		return domain.ShellState{}, fmt.Errorf("%w: %d", ErrSchemaTooNew, state.SchemaVersion)
	}
	state.SchemaVersion = SchemaVersion

	return state, nil
}

// Save 保存状态快照（原子写入）
func Save(path string, state domain.ShellState) error {
	state.SchemaVersion = SchemaVersion
	state.GeneratedAt = time.Now()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(path, data)
}

// BackupCorrupt 把无法加载的快照改名为 <path>.bak，保留现场后允许覆盖写入。
func BackupCorrupt(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.Rename(path, path+".bak")
}

// atomicWrite 原子写入
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
