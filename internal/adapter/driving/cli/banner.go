package cli

import (
	"fmt"
	"io"

	"github.com/diillson/aws-cost-report/pkg/version"
	"github.com/fatih/color"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(w io.Writer) {
	banner := `
     ___        _______    ____          _     ____                       _
    / \ \      / / ___|  / ___|___  ___| |_  |  _ \ ___ _ __   ___  _ __| |_
   / _ \ \ /\ / /\___ \ | |   / _ \/ __| __| | |_) / _ \ '_ \ / _ \| '__| __|
  / ___ \ V  V /  ___) || |__| (_) \__ \ |_  |  _ <  __/ |_) | (_) | |  | |_
 /_/   \_\_/\_/  |____/  \____\___/|___/\__| |_| \_\___| .__/ \___/|_|   \__|
                                                       |_|
`
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Fprintln(w, red(banner))
	fmt.Fprintln(w, blue(fmt.Sprintf("AWS Cost Report (v%s)", version.FormatVersion())))
}
