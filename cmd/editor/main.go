// The editor command is a terminal counterpart of the browser editor: it
// keeps a single note in a local vault file, optionally protected by
// password-based encryption, and never sends plaintext anywhere.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/anhtu/notebox/api/clients"
	"github.com/anhtu/notebox/common"
	"github.com/anhtu/notebox/cryptoutils"
	"github.com/anhtu/notebox/editor"
	"github.com/anhtu/notebox/notes"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

func defaultVaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "notebox-vault.json"
	}
	return filepath.Join(home, ".notebox", "vault.json")
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// openEditor loads the vault and, if the note is protected, prompts for the
// password and unlocks. The entered password is returned so commands that
// re-persist protected content can re-encrypt under it.
func openEditor(cCtx *cli.Context, unlock bool) (*editor.Editor, string, error) {
	vault, err := editor.NewFileVault(cCtx.String("vault"))
	if err != nil {
		return nil, "", err
	}

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug: cCtx.Bool("log-debug"),
		JSON:  false,
	})

	ed := editor.New(vault, cryptoutils.AESCipher{}, logger)
	ed.Load()

	var pw string
	if unlock && ed.Locked() {
		pw, err = promptPassword("Password: ")
		if err != nil {
			return nil, "", err
		}
		if err := ed.Unlock(pw); err != nil {
			return nil, "", err
		}
	}

	return ed, pw, nil
}

// save persists the current content, re-encrypting when the note is
// protected so the save never downgrades it to plaintext.
func save(ed *editor.Editor, pw string) error {
	if ed.Protected() {
		return ed.SetPassword(pw, pw)
	}
	return ed.Save()
}

func main() {
	app := &cli.App{
		Name:  "notebox-editor",
		Usage: "Edit the local encrypted note",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "vault",
				Value: defaultVaultPath(),
				Usage: "path of the local vault file",
			},
			&cli.BoolFlag{
				Name:  "log-debug",
				Value: false,
				Usage: "log debug messages",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "push",
				Usage: "upload the note content to the server as a new note",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "server",
						Value: "http://127.0.0.1:3001",
						Usage: "notebox server base URL",
					},
					&cli.StringFlag{
						Name:  "title",
						Value: "",
						Usage: "title of the uploaded note",
					},
				},
				Action: func(cCtx *cli.Context) error {
					ed, _, err := openEditor(cCtx, true)
					if err != nil {
						return err
					}
					content, err := ed.Content()
					if err != nil {
						return err
					}

					client := &clients.Client{ServerAddr: cCtx.String("server")}
					note, err := client.Create(notes.CreateInput{
						Title:   cCtx.String("title"),
						Content: content,
					})
					if err != nil {
						return err
					}
					fmt.Println(note.ID)
					return nil
				},
			},
			{
				Name:      "pull",
				Usage:     "replace the note content with a note fetched from the server",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "server",
						Value: "http://127.0.0.1:3001",
						Usage: "notebox server base URL",
					},
				},
				Action: func(cCtx *cli.Context) error {
					if cCtx.Args().Len() != 1 {
						return fmt.Errorf("usage: pull ID")
					}

					client := &clients.Client{ServerAddr: cCtx.String("server")}
					note, err := client.Get(cCtx.Args().First())
					if err != nil {
						return err
					}

					ed, pw, err := openEditor(cCtx, true)
					if err != nil {
						return err
					}
					if err := ed.SetContent(note.Content); err != nil {
						return err
					}
					return save(ed, pw)
				},
			},
			{
				Name:  "show",
				Usage: "print the note content",
				Action: func(cCtx *cli.Context) error {
					ed, _, err := openEditor(cCtx, true)
					if err != nil {
						return err
					}
					return ed.ExportTo(os.Stdout)
				},
			},
			{
				Name:      "write",
				Usage:     "replace the note content from stdin and save",
				ArgsUsage: "< file",
				Action: func(cCtx *cli.Context) error {
					ed, pw, err := openEditor(cCtx, true)
					if err != nil {
						return err
					}
					data, err := io.ReadAll(os.Stdin)
					if err != nil {
						return err
					}
					if err := ed.SetContent(string(data)); err != nil {
						return err
					}
					return save(ed, pw)
				},
			},
			{
				Name:  "protect",
				Usage: "set a password on the note",
				Action: func(cCtx *cli.Context) error {
					ed, _, err := openEditor(cCtx, true)
					if err != nil {
						return err
					}
					pw, err := promptPassword("New password: ")
					if err != nil {
						return err
					}
					confirm, err := promptPassword("Confirm password: ")
					if err != nil {
						return err
					}
					if err := ed.SetPassword(pw, confirm); err != nil {
						return err
					}
					fmt.Fprintf(os.Stderr, "Password set (strength %d/100); the note locks on next open\n",
						editor.PasswordStrength(pw))
					return nil
				},
			},
			{
				Name:  "unprotect",
				Usage: "remove the password and store the note as plaintext",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "confirm removing the password",
					},
				},
				Action: func(cCtx *cli.Context) error {
					ed, _, err := openEditor(cCtx, true)
					if err != nil {
						return err
					}
					return ed.RemovePassword(cCtx.Bool("yes"))
				},
			},
			{
				Name:      "import",
				Usage:     "replace the note content with a text file",
				ArgsUsage: "FILE",
				Action: func(cCtx *cli.Context) error {
					ed, pw, err := openEditor(cCtx, true)
					if err != nil {
						return err
					}
					data, err := os.ReadFile(cCtx.Args().First())
					if err != nil {
						return err
					}
					if err := ed.ImportText(string(data)); err != nil {
						return err
					}
					return save(ed, pw)
				},
			},
			{
				Name:  "status",
				Usage: "show protection and save state",
				Action: func(cCtx *cli.Context) error {
					ed, _, err := openEditor(cCtx, false)
					if err != nil {
						return err
					}
					fmt.Printf("protected: %v\nlocked: %v\nlast saved: %s\n",
						ed.Protected(), ed.Locked(), ed.LastSaved())
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
