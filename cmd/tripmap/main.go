package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	kml "github.com/twpayne/go-kml/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/clearroute/tripmap/internal/config"
	"github.com/clearroute/tripmap/internal/lib/export"
	"github.com/clearroute/tripmap/internal/lib/geo"
	"github.com/clearroute/tripmap/internal/lib/proximity"
	"github.com/clearroute/tripmap/internal/lib/rangeband"
	"github.com/clearroute/tripmap/internal/lib/route"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "split-legs":
		handleSplitLegs()
	case "find-overlaps":
		handleFindOverlaps()
	case "annotate":
		handleAnnotate()
	case "check-bands":
		handleCheckBands()
	case "decode-polyline":
		handleDecodePolyline()
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleSplitLegs() {
	fs := flag.NewFlagSet("split-legs", flag.ExitOnError)
	routeFile := fs.String("route-json", "", "Path to JSON file containing the route polyline")
	waypointsFile := fs.String("waypoints-json", "", "Path to JSON file containing an array of waypoints")
	kmlOut := fs.String("kml-out", "", "Optional path to write a KML overlay of the legs")

	fs.Parse(os.Args[2:])

	if *routeFile == "" || *waypointsFile == "" {
		fmt.Println("Example usage:")
		fmt.Println("  tripmap split-legs --route-json route.json --waypoints-json waypoints.json")
		fmt.Println("  tripmap split-legs --route-json route.json --waypoints-json waypoints.json --kml-out legs.kml")
		os.Exit(1)
	}

	polyline := loadRoute(*routeFile)

	var waypoints []route.Waypoint
	readJSONFile(*waypointsFile, &waypoints)

	segmenter := route.NewSegmenter(geo.NewMetric(), newLogger())
	legs := segmenter.SplitLegs(waypoints, polyline)
	overlaps := segmenter.FindOverlaps(legs)

	printJSON(map[string]interface{}{
		"legs":     legs,
		"overlaps": overlaps,
	})

	if *kmlOut != "" {
		writeKML(*kmlOut, export.RouteFolder(legs, overlaps))
	}
}

func handleFindOverlaps() {
	fs := flag.NewFlagSet("find-overlaps", flag.ExitOnError)
	routeFile := fs.String("route-json", "", "Path to JSON file containing the route polyline")
	waypointsFile := fs.String("waypoints-json", "", "Path to JSON file containing an array of waypoints")

	fs.Parse(os.Args[2:])

	if *routeFile == "" || *waypointsFile == "" {
		fmt.Println("Example usage:")
		fmt.Println("  tripmap find-overlaps --route-json route.json --waypoints-json waypoints.json")
		os.Exit(1)
	}

	polyline := loadRoute(*routeFile)

	var waypoints []route.Waypoint
	readJSONFile(*waypointsFile, &waypoints)

	segmenter := route.NewSegmenter(geo.NewMetric(), newLogger())
	overlaps := segmenter.FindOverlaps(segmenter.SplitLegs(waypoints, polyline))

	printJSON(overlaps)
}

func handleAnnotate() {
	fs := flag.NewFlagSet("annotate", flag.ExitOnError)
	routeFile := fs.String("route-json", "", "Path to JSON file containing the route polyline")
	featuresFile := fs.String("features-json", "", "Path to JSON file containing an array of features")
	category := fs.String("category", string(proximity.CategoryLowClearance), "Feature category: low_clearance, rail_crossing or poi")
	configFile := fs.String("config", "", "Optional path to a tripmap YAML config")
	kmlOut := fs.String("kml-out", "", "Optional path to write a KML overlay of included features")

	fs.Parse(os.Args[2:])

	if *featuresFile == "" {
		fmt.Println("Example usage:")
		fmt.Println("  tripmap annotate --route-json route.json --features-json bridges.json --category low_clearance")
		os.Exit(1)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	cat := proximity.Category(*category)
	strategy, err := proximity.StrategyFor(cat)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	layerCfg, err := cfg.Layers.ForCategory(cat)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	var polyline []geo.Point
	if *routeFile != "" {
		polyline = loadRoute(*routeFile)
	}

	var features []proximity.Feature
	readJSONFile(*featuresFile, &features)

	annotator := proximity.NewAnnotator(geo.NewMetric(), newLogger())
	results := annotator.Annotate(features, polyline, strategy, layerCfg)

	printJSON(results)

	if *kmlOut != "" {
		writeKML(*kmlOut, export.FeatureFolder(cat, features, results))
	}
}

func handleCheckBands() {
	fs := flag.NewFlagSet("check-bands", flag.ExitOnError)
	bandsFile := fs.String("bands-json", "", "Path to JSON file containing an array of drive-time bands")
	kmlOut := fs.String("kml-out", "", "Optional path to write a KML overlay of the bands")

	fs.Parse(os.Args[2:])

	if *bandsFile == "" {
		fmt.Println("Example usage:")
		fmt.Println("  tripmap check-bands --bands-json bands.json")
		os.Exit(1)
	}

	var bands []rangeband.Band
	readJSONFile(*bandsFile, &bands)

	if err := rangeband.Validate(bands); err != nil {
		log.Fatalf("Invalid band layers: %v", err)
	}

	fmt.Printf("OK: %d bands, outer %d min to inner %d min\n",
		len(bands), bands[0].Minutes, bands[len(bands)-1].Minutes)

	if *kmlOut != "" {
		writeKML(*kmlOut, export.BandFolder(bands))
	}
}

func handleDecodePolyline() {
	fs := flag.NewFlagSet("decode-polyline", flag.ExitOnError)
	encoded := fs.String("encoded", "", "Google encoded polyline string")

	fs.Parse(os.Args[2:])

	if *encoded == "" {
		fmt.Println("Example usage:")
		fmt.Println("  tripmap decode-polyline --encoded '_p~iF~ps|U_ulLnnqC_mqNvxq`@'")
		os.Exit(1)
	}

	points, err := geo.NewMetric().DecodePolyline(*encoded)
	if err != nil {
		log.Fatalf("Error decoding polyline: %v", err)
	}

	printJSON(points)
}

// loadRoute reads a route JSON file, decoding the encoded polyline when no
// raw points are present
func loadRoute(path string) []geo.Point {
	var in geo.Polyline
	readJSONFile(path, &in)

	if len(in.Points) > 0 {
		return in.Points
	}
	if in.EncodedPolyline != "" {
		points, err := geo.NewMetric().DecodePolyline(in.EncodedPolyline)
		if err != nil {
			log.Fatalf("Error decoding route polyline: %v", err)
		}
		return points
	}
	return nil
}

func readJSONFile(path string, v interface{}) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Error reading %s: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Fatalf("Error parsing %s: %v", path, err)
	}
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Error encoding output: %v", err)
	}
	fmt.Println(string(out))
}

func writeKML(path string, folders ...kml.Element) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("Error creating %s: %v", path, err)
	}
	defer f.Close()

	if err := export.Write(f, folders...); err != nil {
		log.Fatalf("Error writing %s: %v", path, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
}

func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	return logger
}

func printUsage() {
	fmt.Println("tripmap - route geometry and proximity annotation tool")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  split-legs       Split a route polyline into per-waypoint legs and find overlaps")
	fmt.Println("  find-overlaps    Report retraced leg pairs for a route and waypoint set")
	fmt.Println("  annotate         Classify point features against a route")
	fmt.Println("  check-bands      Validate drive-time band layers")
	fmt.Println("  decode-polyline  Decode a Google encoded polyline")
	fmt.Println("  help             Show this help")
}
