package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/em/internal/output"
)

func newShellInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "shell-init <shell>",
		Short:     "Print the shell wrapper function",
		GroupID:   GroupConfig,
		ValidArgs: []string{"bash", "zsh", "fish"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Long: `Print a shell function that wraps em so commands producing a worktree
(cd, co, cp, empty, mv, clone, rm of the current branch) change the shell's
directory.

The wrapper points ` + output.CdFileEnv + ` at a temporary file; em writes the
target directory there and the wrapper changes into it.`,
		Example: `  eval "$(em shell-init bash)"   # add to ~/.bashrc
  eval "$(em shell-init zsh)"    # add to ~/.zshrc
  em shell-init fish | source    # add to ~/.config/fish/config.fish`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			switch args[0] {
			case "bash", "zsh":
				out.Print(posixInit)
			case "fish":
				out.Print(fishInit)
			default:
				return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish)", args[0])
			}
			return nil
		},
	}
}

const posixInit = `# em shell wrapper
em() {
    local __em_cd __em_status __em_dir
    __em_cd="$(mktemp "${TMPDIR:-/tmp}/em-cd.XXXXXX")" || return
    EM_CD_FILE="$__em_cd" command em "$@"
    __em_status=$?
    __em_dir="$(cat "$__em_cd" 2>/dev/null)"
    rm -f "$__em_cd"
    if [ -n "$__em_dir" ] && [ -d "$__em_dir" ]; then
        cd "$__em_dir" || return
    fi
    return $__em_status
}
`

const fishInit = `# em shell wrapper
function em --wraps=em --description 'experiment worktree manager'
    set -l __em_cd (mktemp (set -q TMPDIR; and echo $TMPDIR; or echo /tmp)/em-cd.XXXXXX)
    or return
    EM_CD_FILE=$__em_cd command em $argv
    set -l __em_status $status
    set -l __em_dir (cat $__em_cd 2>/dev/null)
    rm -f $__em_cd
    if test -n "$__em_dir"; and test -d "$__em_dir"
        cd $__em_dir
    end
    return $__em_status
end
`
