package main

import (
	"log"
	"os"
)

const usage = "usage: worker analyze <factPath>... | report <factPath> [outDir] | dot <factPath> <outPath> | watch <dir>"

func main() {
	if len(os.Args) < 3 {
		log.Fatal(usage)
	}

	switch os.Args[1] {
	case "analyze":
		for _, path := range os.Args[2:] {
			if err := analyzeFile(path); err != nil {
				log.Fatalf("analyze %s: %v", path, err)
			}
		}
	case "report":
		out := ""
		if len(os.Args) > 3 {
			out = os.Args[3]
		}
		if err := runReport(os.Args[2], out); err != nil {
			log.Fatalf("report %s: %v", os.Args[2], err)
		}
	case "dot":
		if len(os.Args) < 4 {
			log.Fatal(usage)
		}
		if err := writeDOT(os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("dot %s: %v", os.Args[2], err)
		}
	case "watch":
		if err := watch(os.Args[2]); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}
