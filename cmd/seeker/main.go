// Command seeker is the owning process around the search library: it wires
// configuration, spatial memory, the vision backend and the (simulated)
// drivetrain, and exposes searches and map inspection on the command line.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/roverkit/seeker"
	"github.com/roverkit/seeker/config"
	"github.com/roverkit/seeker/core"
	"github.com/roverkit/seeker/drive"
	"github.com/roverkit/seeker/logging"
	"github.com/roverkit/seeker/spatial"
	"github.com/roverkit/seeker/vision"
	vanthropic "github.com/roverkit/seeker/vision/anthropic"
	vopenai "github.com/roverkit/seeker/vision/openai"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "seeker",
	Short: "Find household objects with a searching robot",
	Long: `Seeker runs object searches on a small wheeled robot: it plans from
learned object-room patterns, escalates through search strategies,
approaches what it finds and remembers where things are kept.`,
}

var searchCmd = &cobra.Command{
	Use:   "search <object>",
	Short: "Search for an object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		robot, err := buildRobot(cfg, logger)
		if err != nil {
			return err
		}

		noLearning, _ := cmd.Flags().GetBool("no-learning")
		approach, _ := cmd.Flags().GetBool("approach")
		maxTime, _ := cmd.Flags().GetDuration("time")
		if maxTime <= 0 {
			maxTime = cfg.MaxTotalTime()
		}

		res, err := robot.Search(cmd.Context(), args[0], func(o *seeker.SearchOptions) {
			o.UseLearning = !noLearning
			o.MaxTotalTime = maxTime
			o.MaxDetections = cfg.Search.MaxDetections
			o.Approach = approach
		})
		if err != nil {
			return err
		}

		if res.Found {
			fmt.Printf("Found the %s (%s, confidence %.2f) via %s in %s.\n",
				res.Object, res.Location, res.Confidence, res.StrategyUsed, res.TotalTime.Round(time.Second))
		} else {
			fmt.Printf("Could not find the %s after checking %d areas (%s, %s).\n",
				res.Object, len(res.AreasSearched), res.StrategyUsed, res.TotalTime.Round(time.Second))
		}
		return nil
	},
}

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Show the discovered room map and learned object patterns",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		robot, err := buildRobot(cfg, logging.NoOpLogger{})
		if err != nil {
			return err
		}

		sum := robot.MapSummary()
		if sum.RoomCount == 0 {
			fmt.Println("No rooms discovered yet.")
			return nil
		}
		fmt.Printf("%d room(s) known:\n", sum.RoomCount)
		for _, room := range sum.Rooms {
			fmt.Printf("  %-12s type=%s objects=%s visits=%d\n",
				room.Name, room.Type, strings.Join(room.Objects, ","), room.Visits)
		}
		if len(sum.Patterns) > 0 {
			fmt.Println("Learned object locations:")
			for _, pat := range sum.Patterns {
				fmt.Printf("  %-12s room=%s seen=%d confidence=%.2f\n",
					pat.Object, pat.RoomID, pat.Frequency, pat.Confidence)
			}
		}
		return nil
	},
}

var decayCmd = &cobra.Command{
	Use:   "decay",
	Short: "Drop object sightings older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		robot, err := buildRobot(cfg, newLogger(cfg))
		if err != nil {
			return err
		}
		removed, err := robot.DecayMemory()
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d stale sighting(s).\n", removed)
		return nil
	},
}

func buildRobot(cfg *config.Config, logger logging.Logger) (*seeker.Robot, error) {
	store := spatial.NewStore(func(o *spatial.Options) {
		o.Path = cfg.Store.Path
		o.Retention = cfg.Retention()
		o.Logger = logger
	})
	vis, err := buildVision(cfg, logger)
	if err != nil {
		return nil, err
	}
	return seeker.New(func(o *seeker.Options) {
		o.Vision = vis
		o.Drivetrain = drive.NewSimDrivetrain()
		o.Store = store
		o.Logger = logger
		o.HomingConfig.MinDistance = cfg.Homing.MinDistanceCM
		o.HomingConfig.MaxApproachTime = cfg.MaxApproachTime()
		o.HomingConfig.MaxIterations = cfg.Homing.MaxIterations
	}), nil
}

// buildVision selects the detection backend. The LLM backends still take
// their frames from the simulated camera until a real camera driver is
// wired in.
func buildVision(cfg *config.Config, logger logging.Logger) (core.Vision, error) {
	camera := vision.NewSimVision()

	var backend core.Vision
	switch cfg.Vision.Provider {
	case "", "sim":
		return camera, nil
	case "openai":
		backend = vopenai.NewVision(camera, func(o *vopenai.Options) {
			if cfg.Vision.Model != "" {
				o.Model = cfg.Vision.Model
			}
		})
	case "anthropic":
		backend = vanthropic.NewVision(camera, func(o *vanthropic.Options) {
			o.APIKey = cfg.Vision.APIKey
			if cfg.Vision.Model != "" {
				o.Model = anthropic.Model(cfg.Vision.Model)
			}
		})
	default:
		return nil, fmt.Errorf("unknown vision provider %q", cfg.Vision.Provider)
	}

	return vision.NewService(backend, func(o *vision.ServiceOptions) {
		o.MaxFailures = uint32(cfg.Vision.MaxFailures)
		o.Rate = rate.Limit(cfg.Vision.RatePerSecond)
		o.Logger = logger
	}), nil
}

func newLogger(cfg *config.Config) logging.Logger {
	return logging.NewSlogLogger(parseLevel(cfg.Logging.Level), cfg.Logging.Format, cfg.Logging.AddSource)
}

func parseLevel(s string) logging.LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "seeker.yaml", "config file")
	searchCmd.Flags().Duration("time", 0, "overall search budget (default from config)")
	searchCmd.Flags().Bool("no-learning", false, "ignore learned object-room patterns")
	searchCmd.Flags().Bool("approach", false, "drive up to the object after finding it")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(roomsCmd)
	rootCmd.AddCommand(decayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
