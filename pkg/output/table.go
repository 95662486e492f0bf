package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/oldmonad/cloudinv/pkg/inventory"
	"github.com/olekukonko/tablewriter"
)

const untaggedLabel = "(untagged)"

func PrintInventory(inv *inventory.Inventory) {
	FprintInventory(os.Stdout, inv)
}

// FprintInventory renders one row per group with its host count and
// addresses. The empty group is shown as (untagged).
func FprintInventory(w io.Writer, inv *inventory.Inventory) {
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Group", "Hosts", "Addresses"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	for _, group := range inv.Groups() {
		hosts := inv.Hosts(group)

		name := green(group)
		if group == "" {
			name = yellow(untaggedLabel)
		}

		table.Append([]string{
			name,
			strconv.Itoa(len(hosts)),
			strings.Join(hosts, ", "),
		})
	}

	table.Render()
}

// FprintSummary prints where the inventory ended up.
func FprintSummary(w io.Writer, path string, published bool, remotePath string) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(w, "Inventory written to %s\n", green(path))
	if published {
		fmt.Fprintf(w, "Published to %s\n", green(remotePath))
		return
	}
	fmt.Fprintln(w, yellow("Not published"))
}
