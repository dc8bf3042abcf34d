package screen

import (
	"time"

	"github.com/hobbs-bbs/hobbs/internal/config"
)

// serverTimezone resolves the configured display timezone, used to
// render stored timestamps such as "previous login at".
func serverTimezone(c *ScreenContext) *time.Location {
	return config.LoadTimezone(c.Deps.Config.Timezone)
}
