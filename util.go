package whirlwind

import (
	"pkg.whirlwind.dev/whirlwind/server"
)

func separateOptions(opts []AppOption) (
	serverOptions []server.Option,
	worldOptions []WorldOption,
	appOptions []func(*App),
) {
	for _, opt := range opts {
		if opt.serverOption != nil {
			serverOptions = append(serverOptions, opt.serverOption)
		}
		if opt.worldOption != nil {
			worldOptions = append(worldOptions, opt.worldOption)
		}
		if opt.appOption != nil {
			appOptions = append(appOptions, opt.appOption)
		}
	}
	return serverOptions, worldOptions, appOptions
}
