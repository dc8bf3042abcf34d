package screen

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/hobbs-bbs/hobbs/internal/domain"
)

// runFileBrowser is the Files-state entry handler: navigates the
// folder hierarchy from the root (zero-value UUID) and lists files
// within a folder, keeping a stack of parents for [U]p navigation.
func runFileBrowser(c *ScreenContext) (ScreenResult, error) {
	var stack []uuid.UUID
	current := uuid.UUID{}
	role := currentRole(c)

	for {
		folders, err := c.Deps.Repos.Files.ListFolders(ctxOf(c), current)
		if err != nil {
			return Back(), c.SendLine(c.T("error.database"))
		}
		files, err := c.Deps.Repos.Files.ListFiles(ctxOf(c), current)
		if err != nil {
			return Back(), c.SendLine(c.T("error.database"))
		}

		visibleFolders := make([]domain.Folder, 0, len(folders))
		for _, f := range folders {
			if role.AtLeast(f.MinReadRole) {
				visibleFolders = append(visibleFolders, f)
			}
		}

		if err := showFileListing(c, visibleFolders, files, len(stack) > 0); err != nil {
			return Back(), err
		}
		if err := c.Send("> "); err != nil {
			return Back(), err
		}
		input, err := c.ReadLine()
		if err != nil {
			return Back(), err
		}
		trimmed := strings.TrimSpace(input)
		upper := strings.ToUpper(trimmed)

		switch {
		case upper == "Q" || upper == "":
			if len(stack) == 0 {
				return Back(), nil
			}
			current = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		case upper == "U":
			if len(stack) == 0 {
				return Back(), nil
			}
			current = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		case strings.HasPrefix(upper, "F"):
			n, err := strconv.Atoi(trimmed[1:])
			if err != nil || n < 1 || n > len(visibleFolders) {
				if err := c.SendLine(c.T("error.not_found")); err != nil {
					return Back(), err
				}
				continue
			}
			stack = append(stack, current)
			current = visibleFolders[n-1].ID
		case strings.HasPrefix(upper, "D"):
			n, err := strconv.Atoi(trimmed[1:])
			if err != nil || n < 1 || n > len(files) {
				if err := c.SendLine(c.T("error.not_found")); err != nil {
					return Back(), err
				}
				continue
			}
			if err := runDownloadFile(c, files[n-1]); err != nil {
				return Back(), err
			}
		default:
			if err := c.SendLine(c.T("welcome.invalid_choice")); err != nil {
				return Back(), err
			}
		}
	}
}

func showFileListing(c *ScreenContext, folders []domain.Folder, files []domain.File, canGoUp bool) error {
	var b strings.Builder
	b.WriteString("\n=== Files ===\n")
	for i, f := range folders {
		b.WriteString("F" + strconv.Itoa(i+1) + ". [" + f.Name + "]\n")
	}
	for i, f := range files {
		size := strconv.FormatInt(f.SizeBytes, 10) + "b"
		b.WriteString("D" + strconv.Itoa(i+1) + ". " + f.DisplayName + " (" + size + ", " +
			strconv.Itoa(f.Downloads) + " downloads)\n")
	}
	b.WriteString("\n")
	if canGoUp {
		b.WriteString("[U]p  ")
	}
	b.WriteString("F#=open folder  D#=download  [Q]uit\n")
	return c.Send(b.String())
}

func runDownloadFile(c *ScreenContext, f domain.File) error {
	if err := c.Deps.Repos.Files.RecordDownload(ctxOf(c), f.ID); err != nil {
		return c.SendLine(c.T("error.database"))
	}
	return c.SendLine("Blob: " + f.BlobName)
}
