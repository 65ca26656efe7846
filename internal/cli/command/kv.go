package command

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/predkv/predkv/internal/client"
	"github.com/predkv/predkv/internal/core/domain"
)

// ReadCommand returns the read command.
func ReadCommand() *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "Read the entry stored under a key",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return argError(c, "<key>")
			}
			flags := ParseGlobalFlags(c)
			key := parseLiteral(c.Args().Get(0), flags.ForceString)

			return withClient(flags, func(cl *client.Client) (*domain.Response, error) {
				return cl.Read(key)
			})
		},
	}
}

// AddCommand returns the add command.
func AddCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Store a value under a key, overwriting any existing entry",
		ArgsUsage: "<key> <value>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return argError(c, "<key> <value>")
			}
			flags := ParseGlobalFlags(c)
			key := parseLiteral(c.Args().Get(0), flags.ForceString)
			value := parseLiteral(c.Args().Get(1), flags.ForceString)

			return withClient(flags, func(cl *client.Client) (*domain.Response, error) {
				return cl.Add(key, value)
			})
		},
	}
}

// DeleteCommand returns the delete command.
func DeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete the entry stored under a key",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return argError(c, "<key>")
			}
			flags := ParseGlobalFlags(c)
			key := parseLiteral(c.Args().Get(0), flags.ForceString)

			return withClient(flags, func(cl *client.Client) (*domain.Response, error) {
				return cl.Delete(key)
			})
		},
	}
}

// QueryCommand returns the query command.
func QueryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Run a query, e.g. 'read key > int ( 5 )'",
		ArgsUsage: "<query>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return argError(c, "'<query>'")
			}
			flags := ParseGlobalFlags(c)

			return withClient(flags, func(cl *client.Client) (*domain.Response, error) {
				return cl.Query(c.Args().Get(0))
			})
		},
	}
}

// withClient dials the server, runs one operation, and prints the
// response. A response with Success=false exits with status 1.
func withClient(flags *GlobalFlags, op func(*client.Client) (*domain.Response, error)) error {
	cl, err := client.Dial(flags.Server)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	defer cl.Close()

	resp, err := op(cl)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}

	out, err := formatResponse(resp, flags.Output)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	fmt.Print(out)

	if !resp.Success {
		return cli.Exit("", 1)
	}
	return nil
}

// parseLiteral converts a command-line argument to a typed value.
// Detection order matches the query grammar's type names: int, then
// float, then complex, falling back to string.
func parseLiteral(s string, forceString bool) domain.Value {
	if forceString {
		return domain.String(s)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return domain.Int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return domain.Float(f)
	}
	if z, err := strconv.ParseComplex(s, 128); err == nil {
		return domain.Complex(z)
	}
	return domain.String(s)
}

func formatResponse(resp *domain.Response, output string) (string, error) {
	switch output {
	case "json":
		b, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return "", err
		}
		return string(b) + "\n", nil
	case "plain", "":
		return formatPlain(resp), nil
	default:
		return "", fmt.Errorf("unknown output format %q", output)
	}
}

func formatPlain(resp *domain.Response) string {
	if !resp.Success {
		return resp.Message + "\n"
	}
	out := ""
	for _, e := range resp.Data {
		out += e.Key.Format() + "\t" + e.Value.Format() + "\n"
	}
	if out == "" {
		out = "OK\n"
	}
	return out
}
