package inventory

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oldmonad/cloudinv/pkg/errors"
)

const filePerm = 0o644

// WriteTo renders the inventory as INI: a [group] header, one bare host line
// per address and a blank line after each group.
func (inv *Inventory) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64

	for _, name := range inv.order {
		c, err := fmt.Fprintf(bw, "[%s]\n", name)
		n += int64(c)
		if err != nil {
			return n, err
		}
		for _, ip := range inv.groups[name].hosts {
			c, err := bw.WriteString(ip + "\n")
			n += int64(c)
			if err != nil {
				return n, err
			}
		}
		c, err = bw.WriteString("\n")
		n += int64(c)
		if err != nil {
			return n, err
		}
	}

	return n, bw.Flush()
}

// WriteFile replaces the file at path with the rendered inventory.
func (inv *Inventory) WriteFile(path string) error {
	var buf bytes.Buffer
	if _, err := inv.WriteTo(&buf); err != nil {
		return errors.NewWriteInventory(path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), filePerm); err != nil {
		return errors.NewWriteInventory(path, err)
	}
	return nil
}

// Parse reads an inventory rendered by WriteTo. Blank lines and ; or #
// comments are ignored. Host lines may carry "= value" suffixes, which are
// dropped.
func Parse(r io.Reader, source string) (*Inventory, error) {
	inv := New()
	scanner := bufio.NewScanner(r)

	current := ""
	inSection := false
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, ";") || strings.HasPrefix(text, "#") {
			continue
		}

		if strings.HasPrefix(text, "[") {
			if !strings.HasSuffix(text, "]") {
				return nil, errors.NewReadInventory(source, line, fmt.Errorf("unterminated section header %q", text))
			}
			current = text[1 : len(text)-1]
			inSection = true
			if _, ok := inv.groups[current]; !ok {
				inv.groups[current] = &group{seen: make(map[string]struct{})}
				inv.order = append(inv.order, current)
			}
			continue
		}

		if !inSection {
			return nil, errors.NewReadInventory(source, line, fmt.Errorf("host %q outside of a section", text))
		}
		host := text
		if i := strings.IndexByte(host, '='); i >= 0 {
			host = strings.TrimSpace(host[:i])
		}
		inv.Add(current, host)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewReadInventory(source, line, err)
	}

	return inv, nil
}

func ReadFile(path string) (*Inventory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewReadInventory(path, 0, err)
	}
	defer f.Close()

	return Parse(f, path)
}
