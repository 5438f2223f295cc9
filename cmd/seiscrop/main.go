package main

import (
	"fmt"
	"os"

	"github.com/op/go-logging"
	"github.com/spf13/cobra"

	"gonum.org/v1/gonum/stat"

	"seiscrop/pkg/config"
	"seiscrop/pkg/dataset"
	"seiscrop/pkg/geometry"
	"seiscrop/pkg/grid"
	"seiscrop/pkg/sampler"
)

var log = logging.MustGetLogger("seiscrop")

func main() {
	var configPath string
	var verbose bool

	root := &cobra.Command{
		Use:   "seiscrop",
		Short: "Plan crop grids and draw training points over seismic cubes",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "seiscrop.yaml", "Path to YAML configuration")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	root.AddCommand(gridCommand(&configPath))
	root.AddCommand(sampleCommand(&configPath))

	if err := root.Execute(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func setupLogging(verbose bool) {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatter := logging.MustStringFormatter(`%{level:.4s} %{module} %{message}`)
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, formatter))
	if verbose {
		leveled.SetLevel(logging.DEBUG, "")
	} else {
		leveled.SetLevel(logging.INFO, "")
	}
	logging.SetBackend(leveled)
}

// loadGeometries builds shape records for every configured volume. The CLI
// carries no trace data, so the empty-trace masks are nil.
func loadGeometries(cfg *config.Config) ([]*geometry.Geometry, error) {
	if len(cfg.Volumes) == 0 {
		return nil, fmt.Errorf("no volumes configured")
	}
	geoms := make([]*geometry.Geometry, 0, len(cfg.Volumes))
	for _, v := range cfg.Volumes {
		g, err := geometry.New(v.Name, v.Extents, nil)
		if err != nil {
			return nil, err
		}
		geoms = append(geoms, g)
	}
	return geoms, nil
}

func gridCommand(configPath *string) *cobra.Command {
	var volume string

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Plan a full-volume crop grid and report its pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			geoms, err := loadGeometries(cfg)
			if err != nil {
				return err
			}

			geom := geoms[0]
			if volume != "" {
				geom = nil
				for _, g := range geoms {
					if g.Name == volume {
						geom = g
						break
					}
				}
				if geom == nil {
					return fmt.Errorf("volume %q not in configuration", volume)
				}
			}

			shape := geom.Shape()
			g, err := grid.MakeGrid(geom, cfg.Grid.CropShape,
				[2]int{0, shape[0]}, [2]int{0, shape[1]}, [2]int{0, shape[2]},
				cfg.Grid.Strides, cfg.Grid.BatchSize)
			if err != nil {
				return err
			}

			info := g.Info()
			fmt.Printf("Grid plan for volume %s (run %s)\n", info.Volume, info.RunID)
			fmt.Printf("  crop shape:    %v\n", info.CropShape)
			fmt.Printf("  predict shape: %v\n", info.PredictShape)
			fmt.Printf("  offsets:       %v\n", info.Offsets)
			fmt.Printf("  anchors:       %d\n", g.Total())
			fmt.Printf("  pages:         %d (batch size %d)\n", g.Pages(), cfg.Grid.BatchSize)

			rows := 0
			for page, ok := g.Next(); ok; page, ok = g.Next() {
				rows += len(page)
			}
			log.Debugf("drained %d rows over %d pages", rows, g.Pages())
			return nil
		},
	}
	cmd.Flags().StringVar(&volume, "volume", "", "Volume to tile (default: first configured)")
	return cmd
}

func sampleCommand(configPath *string) *cobra.Command {
	var n int
	var toCube bool

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Draw points from the dataset mixture and summarise them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			geoms, err := loadGeometries(cfg)
			if err != nil {
				return err
			}

			// Histogram mode needs label points, which the CLI does not
			// carry; the mixture falls back to uniform per volume.
			specs := make(map[string]sampler.Spec)
			mix, err := dataset.New(geoms, specs, cfg.Sampling.Weights, cfg.Sampling.Seed)
			if err != nil {
				return err
			}

			s := mix.Sampler()
			if toCube {
				s, err = dataset.NewFilter(geoms).ToCube().Apply(s)
				if err != nil {
					return err
				}
			}

			points, err := s.Sample(n)
			if err != nil {
				return err
			}

			perVolume := make(map[string]int)
			var axes [3][]float64
			for _, p := range points {
				perVolume[p.Volume]++
				for axis := 0; axis < 3; axis++ {
					axes[axis] = append(axes[axis], p.Coords[axis])
				}
			}

			fmt.Printf("Drew %d points from %d volumes\n", len(points), len(mix.Volumes()))
			for i, name := range mix.Volumes() {
				fmt.Printf("  %-20s weight %.3f drawn %d\n", name, mix.Weights()[i], perVolume[name])
			}
			for axis := 0; axis < 3; axis++ {
				mean, std := stat.MeanStdDev(axes[axis], nil)
				fmt.Printf("  axis %d: mean %.4f stddev %.4f\n", axis, mean, std)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "n", 10000, "Number of points to draw")
	cmd.Flags().BoolVar(&toCube, "to-cube", false, "Rescale draws to absolute cube indices")
	return cmd
}
