// The agent joins a document on a relay and exposes the engine through
// a line-oriented command prompt: the editing surface is whatever pipes
// commands in, the agent just translates them into engine calls.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"

	"github.com/Zabi-Anwari/CollabCore/config"
	"github.com/Zabi-Anwari/CollabCore/crdt"
	"github.com/Zabi-Anwari/CollabCore/export"
	"github.com/Zabi-Anwari/CollabCore/session"
)

func main() {
	cfgPath := flag.String("config", "collabcore.toml", "path to config file")
	flag.Parse()

	log.SetHandler(text.New(os.Stderr))
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.WithError(err).Fatal("loading config")
	}
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := session.New(cfg.UserName, cfg.UndoDepth)
	url := cfg.RelayURL + "/" + cfg.Document
	go func() {
		if err := s.Run(ctx, url); err != nil && ctx.Err() == nil {
			log.WithError(err).Fatal("session stopped")
		}
	}()
	if cfg.Discovery {
		go func() {
			if err := session.Discover(ctx, 8080); err != nil && ctx.Err() == nil {
				log.WithError(err).Warn("discovery stopped")
			}
		}()
	}

	repl(s)
}

// repl reads one command per line. Commands:
//
//	i INDEX TEXT    insert TEXT at INDEX
//	d INDEX [END]   delete one char, or the range [INDEX, END)
//	f START END KEY VALUE
//	u / r           undo / redo
//	t               print text
//	s               print styled spans
//	q               quit
func repl(s *session.Session) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "i":
			if len(fields) < 3 {
				continue
			}
			idx, err := strconv.Atoi(fields[1])
			if err != nil {
				continue
			}
			s.Insert(idx, strings.Join(fields[2:], " "), nil)
		case "d":
			if len(fields) < 2 {
				continue
			}
			start, err := strconv.Atoi(fields[1])
			if err != nil {
				continue
			}
			if len(fields) > 2 {
				if end, err := strconv.Atoi(fields[2]); err == nil {
					s.DeleteRange(start, end)
				}
				continue
			}
			s.Delete(start)
		case "f":
			if len(fields) < 5 {
				continue
			}
			start, err1 := strconv.Atoi(fields[1])
			end, err2 := strconv.Atoi(fields[2])
			if err1 != nil || err2 != nil {
				continue
			}
			s.Format(start, end, crdt.Attributes{fields[3]: fields[4]})
		case "u":
			s.Undo()
		case "r":
			s.Redo()
		case "t":
			fmt.Println(s.Text())
		case "s":
			for _, span := range export.Spans(s.Elements()) {
				if span.Break {
					fmt.Println("--")
					continue
				}
				fmt.Printf("%q %v\n", span.Text, span.Attributes)
			}
		case "q":
			return
		}
	}
}
