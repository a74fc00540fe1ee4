package vpn

import "strix/backend/service/shared"

// LaunchFlagsApplier 把代理端点写入启动开关文件（进程级开关的落点）。
type LaunchFlagsApplier struct {
	flags *shared.LaunchFlagsFile
}

// NewLaunchFlagsApplier 创建启动开关下发器
func NewLaunchFlagsApplier(flags *shared.LaunchFlagsFile) *LaunchFlagsApplier {
	return &LaunchFlagsApplier{flags: flags}
}

func (a *LaunchFlagsApplier) ApplyProxy(endpoint string) error {
	return a.flags.Mutate(func(flags shared.LaunchFlags) shared.LaunchFlags {
		flags.ProxyServer = endpoint
		return flags
	})
}

func (a *LaunchFlagsApplier) ClearProxy() error {
	return a.flags.Mutate(func(flags shared.LaunchFlags) shared.LaunchFlags {
		flags.ProxyServer = ""
		return flags
	})
}

// 确保实现接口
var _ SwitchApplier = (*LaunchFlagsApplier)(nil)
