package screen

import (
	"strconv"
	"strings"

	"github.com/hobbs-bbs/hobbs/internal/domain"
)

// runScripts is the Script-state entry handler: lists registered
// script doors visible to the session's role. Execution itself belongs
// to the scripting runtime; this screen only lists metadata and
// reports that launching a script isn't available on this server.
func runScripts(c *ScreenContext) (ScreenResult, error) {
	role := currentRole(c)
	scripts, err := c.Deps.Repos.Scripts.List(ctxOf(c))
	if err != nil {
		return Back(), c.SendLine(c.T("error.database"))
	}
	visible := make([]domain.ScriptMeta, 0, len(scripts))
	for _, s := range scripts {
		if s.IsActive && role.AtLeast(s.MinRole) {
			visible = append(visible, s)
		}
	}

	offset := 0
	for {
		page, hasNext, hasPrev := paginate(visible, offset)
		var b strings.Builder
		b.WriteString("\n=== Scripts ===\n")
		for i, s := range page {
			b.WriteString(strconv.Itoa(i+1) + ". " + s.Name + "\n")
		}
		writePagerFooter(&b, hasNext, hasPrev)
		if err := c.Send(b.String()); err != nil {
			return Back(), err
		}
		if err := c.Send("> "); err != nil {
			return Back(), err
		}
		input, err := c.ReadLine()
		if err != nil {
			return Back(), err
		}
		action, sel := parsePageChoice(input)
		switch action {
		case pageNext:
			if hasNext {
				offset += PageSize
			}
		case pagePrev:
			if hasPrev {
				offset -= PageSize
			}
		case pageQuit:
			return Back(), nil
		case pageSelect:
			if sel < 1 || sel > len(page) {
				if err := c.SendLine(c.T("error.not_found")); err != nil {
					return Back(), err
				}
				continue
			}
			if err := c.SendLine("Script execution is not available on this server."); err != nil {
				return Back(), err
			}
		default:
			if err := c.SendLine(c.T("welcome.invalid_choice")); err != nil {
				return Back(), err
			}
		}
	}
}
