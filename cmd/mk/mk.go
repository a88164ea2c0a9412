package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rprtr258/mk"
	md "github.com/rprtr258/mk/contrib/markdown"
	"github.com/urfave/cli/v2"
)

const (
	imgsDir  = "img/static"
	origName = "orig.png"
)

type example struct {
	name string
	args []string
}

// examples are rendered from orig.png by "imgs" and listed by "readme".
var examples = []example{
	{"box_3x3", []string{"box", "-k", "3"}},
	{"box_15x15", []string{"box", "-k", "15"}},
	{"weighted_5x5_05", []string{"weighted", "-k", "5", "-f", "0.5"}},
	{"weighted_9x9_01", []string{"weighted", "-k", "9", "-f", "0.1"}},
	{"gaussian_21x21", []string{"gaussian", "-k", "21"}},
	{"gaussian_21x21_norm", []string{"gaussian", "-k", "21", "--normalize"}},
}

func main() {
	if err := (&cli.App{
		Name:  "mk",
		Usage: "commands runner",
		Commands: []*cli.Command{
			{
				Name:  "imgs",
				Usage: "update example imgs from a generated gradient",
				Action: func(*cli.Context) error {
					orig := filepath.Join(imgsDir, origName)
					mk.Must2(mk.ShellCmd("go", "run", "./cmd/pgmblur", "gradient", "--width", "256", "--height", "256", "-o", orig))

					pgmblurCmd := mk.ShellAlias("go", "run", "./cmd/pgmblur")
					for _, ex := range examples {
						imageFilename, _ := mk.Must2(pgmblurCmd(append(ex.args, "-i", orig)...))
						mk.Must0(os.Rename(strings.TrimSpace(imageFilename), filepath.Join(imgsDir, ex.name+".png")))
					}

					return nil
				},
			},
			{
				Name:  "readme",
				Usage: "compile readme file",
				Action: func(*cli.Context) error {
					b := &bytes.Buffer{}
					md.H1(b, "pgmblur - grayscale blur tool")

					md.H2(b, "Install")
					md.Code(b, "bash", "go install github.com/rprtr258/pgmblur/cmd/pgmblur@latest")

					md.H2(b, "Usage")
					usage, _ := mk.Must2(mk.ShellCmd("go", "run", "./cmd/pgmblur", "--help"))
					md.Code(b, "", usage)

					rows := make([][]string, 0, len(examples)+1)
					rows = append(rows, []string{"source", "", fmt.Sprintf("![](./%s/%s)", imgsDir, origName)})
					for _, ex := range examples {
						rows = append(rows, []string{
							ex.args[0],
							"`" + strings.Join(ex.args[1:], " ") + "`",
							fmt.Sprintf("![](./%s/%s.png)", imgsDir, ex.name),
						})
					}

					md.H2(b, "Examples")
					md.Table(b, []string{"kernel", "flags", "result"}, rows)

					mk.Must0(os.WriteFile("README.md", b.Bytes(), 0o644))

					return nil
				},
			},
		},
	}).Run(os.Args); err != nil {
		log.Fatal(err.Error())
	}
}
