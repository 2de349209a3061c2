package commands

import (
	"fmt"
	"os"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

const starterConfig = `# storyposter configuration
images:
  directory: images
  caption_template: "📖 Bible Story - {date}"

state:
  directory: .
  file: last_posted.txt

schedule:
  at: "09:00"
  timezone: UTC

http:
  port: 5000

journal:
  path: posts.db

# Optional NATS event publishing:
# notify:
#   url: nats://localhost:4222
#   subject: storyposter.posts

# Credentials come from the environment (or a .env file):
#   FACEBOOK_PAGE_ID=...
#   FACEBOOK_ACCESS_TOKEN=...
`

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	if _, err := os.Stat(root.Config); err == nil && !i.Force {
		return fmt.Errorf("configuration file %s already exists (use --force to overwrite)", root.Config)
	}
	if err := os.WriteFile(root.Config, []byte(starterConfig), 0o600); err != nil {
		return fmt.Errorf("write configuration file: %w", err)
	}
	fmt.Printf("Wrote %s\n", root.Config)
	return nil
}
