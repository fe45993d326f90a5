package fx

import (
	"github.com/snapwatch/tiktok-monitor/internal/repositories/post"
	"go.uber.org/fx"
)

var Module = fx.Options(
	post.Module,
)
