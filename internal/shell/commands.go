package shell

import (
	"fmt"
	"strings"
)

type command struct {
	name  string
	usage string
	help  string
	// needArg and needRest demand a first argument and a remainder.
	needArg  bool
	needRest bool
	run      func(s *Shell, arg, rest string) error
}

func (c command) check(arg, rest string) error {
	if (c.needArg && arg == "") || (c.needRest && strings.TrimSpace(rest) == "") {
		return fmt.Errorf("usage: %s", c.usage)
	}
	return nil
}

var commands []command

func init() {
	commands = []command{
		{name: "ls", usage: "ls", help: "List the current directory", run: (*Shell).ls},
		{name: "cd", usage: "cd <name|..>", help: "Change directory", needArg: true, run: (*Shell).cd},
		{name: "pwd", usage: "pwd", help: "Print the current directory path", run: (*Shell).pwd},
		{name: "mkdir", usage: "mkdir <name>", help: "Create a directory", needArg: true, run: (*Shell).mkdir},
		{name: "touch", usage: "touch <name>", help: "Create an empty file", needArg: true, run: (*Shell).touch},
		{name: "write", usage: "write <name> <data>", help: "Append data to a file", needArg: true, run: (*Shell).write},
		{name: "read", usage: "read <name>", help: "Print a file", needArg: true, run: (*Shell).read},
		{name: "rm", usage: "rm <name>", help: "Delete a file", needArg: true, run: (*Shell).rm},
		{name: "rmdir", usage: "rmdir <name>", help: "Delete a directory and everything in it", needArg: true, run: (*Shell).rmdir},
		{name: "cp", usage: "cp <name> <dir|..>", help: "Copy a file into a subdirectory or the parent", needArg: true, needRest: true, run: (*Shell).cp},
		{name: "fat", usage: "fat", help: "Show the allocation table", run: (*Shell).fat},
		{name: "tree", usage: "tree", help: "Show the directory tree below the current directory", run: (*Shell).tree},
		{name: "stat", usage: "stat [name]", help: "Show file system or file details", run: (*Shell).stat},
		{name: "check", usage: "check", help: "Verify blocks and allocation records", run: (*Shell).check},
		{name: "help", usage: "help", help: "Show this help", run: (*Shell).help},
	}
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func (s *Shell) ls(_, _ string) error {
	return s.printer.PrintListing(s.fs.List())
}

func (s *Shell) cd(arg, _ string) error {
	return s.fs.ChangeDir(arg)
}

func (s *Shell) pwd(_, _ string) error {
	_, err := fmt.Fprintln(s.out, s.fs.Pwd())
	return err
}

func (s *Shell) mkdir(arg, _ string) error {
	return s.fs.MakeDir(arg)
}

func (s *Shell) touch(arg, _ string) error {
	return s.fs.Touch(arg)
}

func (s *Shell) write(arg, rest string) error {
	return s.fs.Write(arg, []byte(rest))
}

func (s *Shell) read(arg, _ string) error {
	data, err := s.fs.Read(arg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.out, "%s\n", data)
	return err
}

func (s *Shell) rm(arg, _ string) error {
	return s.fs.Remove(arg)
}

func (s *Shell) rmdir(arg, _ string) error {
	return s.fs.RemoveDir(arg)
}

func (s *Shell) cp(arg, rest string) error {
	return s.fs.Copy(arg, strings.TrimSpace(rest))
}

func (s *Shell) fat(_, _ string) error {
	return s.printer.PrintFAT(s.fs.FAT())
}

func (s *Shell) tree(_, _ string) error {
	return s.printer.PrintTree(s.fs.Tree())
}

func (s *Shell) stat(arg, _ string) error {
	if arg == "" {
		return s.printer.PrintStats(s.fs.Stats())
	}
	info, err := s.fs.Stat(arg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.out, "%s: %d bytes, %d blocks, head %d\n", info.Name, info.Size, info.Blocks, info.Head)
	return err
}

func (s *Shell) check(_, _ string) error {
	if err := s.fs.Check(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(s.out, "ok")
	return err
}

func (s *Shell) help(_, _ string) error {
	for _, c := range commands {
		if _, err := fmt.Fprintf(s.out, "  %-22s %s\n", c.usage, c.help); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(s.out, "  %-22s %s\n", "exit", "Save and leave")
	return err
}
