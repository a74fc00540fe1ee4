package memory

import (
	"context"

	"strix/backend/repository"
	"strix/backend/repository/events"
)

// VPNStateRepo VPN 持久化状态仓储实现。
// 只保存最后一次成功连接的位置码，用于 vpnAutoConnect 启动重连。
type VPNStateRepo struct {
	store *Store
}

// NewVPNStateRepo 创建 VPN 状态仓储
func NewVPNStateRepo(store *Store) *VPNStateRepo {
	return &VPNStateRepo{store: store}
}

func (r *VPNStateRepo) LastLocation(ctx context.Context) (string, error) {
	r.store.RLock()
	defer r.store.RUnlock()
	return r.store.LastVPNLocation(), nil
}

func (r *VPNStateRepo) SetLastLocation(ctx context.Context, location string) error {
	r.store.Lock()
	changed := r.store.LastVPNLocation() != location
	r.store.SetLastVPNLocation(location)
	r.store.Unlock()

	if changed {
		// 复用设置事件触发快照持久化
		r.store.PublishEvent(events.SettingsEvent{
			EventType: events.EventSettingsChanged,
			Key:       "lastVpnLocation",
		})
	}
	return nil
}

// 确保实现接口
var _ repository.VPNStateRepository = (*VPNStateRepo)(nil)
