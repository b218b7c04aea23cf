// Command graspkit evaluates a grasp scene script, samples the scene
// into a signed distance grid, and reports where each candidate line
// of action first touches the surface.
//
// Usage:
//
//	graspkit [flags] scene.lisp
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/seagrove/graspkit/pkg/engine"
	"github.com/seagrove/graspkit/pkg/field"
	"github.com/seagrove/graspkit/pkg/grasp"
	"github.com/seagrove/graspkit/pkg/scene"
	"github.com/seagrove/graspkit/pkg/store"
	"github.com/seagrove/graspkit/pkg/viz"
)

// logTracer logs every search step. Installed with -v.
type logTracer struct{}

func (logTracer) Step(index int, c field.Cell, tsdf float64) {
	log.Printf("line %d: cell (%d,%d) tsdf %.3f", index, c.X, c.Y, tsdf)
}

func (logTracer) Contact(index int, c field.Cell, normal field.Vec2) {
	log.Printf("line %d: contact at (%d,%d) normal (%.3f,%.3f)", index, c.X, c.Y, normal.X, normal.Y)
}

func main() {
	var (
		plotPath  = flag.String("plot", "", "write a PNG visualization to this path")
		dbPath    = flag.String("db", "", "record the run in this SQLite database")
		dim       = flag.Int("dim", 0, "override the script's grid dimension")
		threshold = flag.Float64("threshold", -1, "override the script's surface threshold")
		verbose   = flag.Bool("v", false, "log every search step")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: graspkit [flags] scene.lisp")
		flag.PrintDefaults()
		os.Exit(2)
	}
	scriptPath := flag.Arg(0)

	source, err := os.ReadFile(scriptPath)
	if err != nil {
		log.Fatalf("read script: %v", err)
	}

	plan, evalErrs, err := engine.NewEngine().Evaluate(string(source))
	if err != nil {
		log.Fatalf("evaluate %s: %v", scriptPath, err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintf(os.Stderr, "%s: %s\n", scriptPath, e.Error())
		}
		os.Exit(1)
	}

	if plan.Name == "" {
		plan.Name = scriptPath
	}
	if *dim > 0 {
		plan.Grid.Dim = *dim
	}
	if *threshold >= 0 {
		plan.Grid.Threshold = *threshold
	}
	if err := plan.Validate(); err != nil {
		log.Fatalf("%s: %v", scriptPath, err)
	}

	grid, normals, frame, err := scene.Rasterize(plan.Surface, plan.Grid)
	if err != nil {
		log.Fatalf("rasterize: %v", err)
	}
	pairs := plan.GridLines(frame)
	com := scene.CenterOfMass(grid)

	var opts []grasp.Option
	if *verbose {
		opts = append(opts, grasp.WithTracer(logTracer{}))
	}
	res, err := grasp.FindContactPoints(pairs, plan.Contacts(), grid, normals, plan.Grid.Threshold, opts...)
	if err != nil {
		log.Fatalf("find contact points: %v", err)
	}

	fmt.Printf("scene %s: grid %dx%d, threshold %g, %d candidate lines\n",
		plan.Name, plan.Grid.Dim, plan.Grid.Dim, plan.Grid.Threshold, plan.Contacts())
	for i, c := range res.Contacts {
		if c.IsZero() {
			fmt.Printf("  line %d: no contact\n", i)
			continue
		}
		w := frame.ToWorld(c)
		n := res.Normals[i]
		fmt.Printf("  line %d: contact cell (%d,%d) world (%.2f,%.2f) normal (%.3f,%.3f)\n",
			i, c.X, c.Y, w.X, w.Y, n.X, n.Y)
	}
	if res.Bad {
		fmt.Println("grasp: BAD (a required contact did not resolve)")
	} else {
		fmt.Println("grasp: ok")
	}

	if *plotPath != "" {
		if err := viz.Render(plan.Name, grid, pairs, res, com, *plotPath); err != nil {
			log.Fatalf("plot: %v", err)
		}
		log.Printf("wrote %s", *plotPath)
	}

	if *dbPath != "" {
		st, err := store.Open(*dbPath)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer st.Close()
		id, err := st.RecordRun(plan.Name, plan.Grid.Dim, plan.Grid.Threshold, res)
		if err != nil {
			log.Fatalf("record run: %v", err)
		}
		log.Printf("recorded run %s", id)
	}

	if res.Bad {
		os.Exit(1)
	}
}
