package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/infrastructure/logger"
	"github.com/witnessdag/witnessd/version"
)

const (
	defaultConfigFilename     = "witnessd.conf"
	defaultDataDirname        = "data"
	defaultLogLevel           = "info"
	defaultLogDirname         = "logs"
	defaultLogFilename        = "witnessd.log"
	defaultErrLogFilename     = "witnessd_err.log"
	defaultMaxMessageSize     = 1 << 26
	defaultCatchupRateLimit   = 50
	defaultCatchupBurst       = 100
	defaultMaxCatchupSessions = 8
	defaultCacheSize          = 10000
)

var (
	// DefaultAppDir is the default home directory for witnessd.
	DefaultAppDir = defaultAppDir()

	defaultConfigFile = filepath.Join(DefaultAppDir, defaultConfigFilename)
	defaultDataDir    = filepath.Join(DefaultAppDir, defaultDataDirname)
	defaultLogDir     = filepath.Join(DefaultAppDir, defaultLogDirname)
)

// Flags defines the configuration options for witnessd.
//
// See LoadConfig for details on the configuration load process.
type Flags struct {
	ShowVersion        bool     `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile         string   `short:"C" long:"configfile" description:"Path to configuration file"`
	AppDir             string   `short:"b" long:"appdir" description:"Directory to store data"`
	LogDir             string   `long:"logdir" description:"Directory to log output"`
	LogRotateSizeKB    int64    `long:"logrotatesize" description:"Size in KB at which a log file is rolled"`
	LogMaxRolls        int      `long:"logmaxrolls" description:"Number of rolled log files to keep"`
	DebugLevel         string   `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	GRPCListeners      []string `long:"grpclisten" description:"Add an interface/port to serve catchup requests on (default port: simnet 18611, devnet 18711)"`
	DisableGRPC        bool     `long:"nogrpc" description:"Do not serve catchup requests"`
	APIListener        string   `long:"apilisten" description:"Interface/port to serve the HTTP API and metrics on (default port: simnet 18612, devnet 18712)"`
	DisableAPI         bool     `long:"noapi" description:"Do not serve the HTTP API"`
	ConnectPeer        string   `long:"connect" description:"Catch up from the catchup server at this address on startup"`
	Witnesses          []string `long:"witness" description:"Add an address to the witness list used to catch up and to select parents (default: the genesis witnesses)"`
	MaxHashTreeSpan    uint64   `long:"maxhashtreespan" description:"Max main chain index span of a served hash tree"`
	MaxHashTreeBalls   int      `long:"maxhashtreeballs" description:"Max number of balls in a served hash tree page"`
	CatchupRateLimit   float64  `long:"catchupratelimit" description:"Max catchup requests per second served to a single peer"`
	CatchupBurst       int      `long:"catchupburst" description:"Max burst of catchup requests served to a single peer"`
	MaxCatchupSessions int64    `long:"maxcatchupsessions" description:"Max number of catchup chains and hash trees built concurrently"`
	MaxMessageSize     int      `long:"maxmessagesize" description:"Max size in bytes of a catchup message"`
	CacheSize          int      `long:"cachesize" description:"Number of entries each consensus store keeps in memory"`
	Profile            string   `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65536"`
	NetworkFlags
}

// Config defines the configuration options for witnessd.
type Config struct {
	*Flags

	LogFile    string
	ErrLogFile string
}

// LogRotation returns the rotation settings of the log files
func (cfg *Config) LogRotation() logger.Rotation {
	return logger.Rotation{ThresholdKB: cfg.LogRotateSizeKB, MaxRolls: cfg.LogMaxRolls}
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = strings.Replace(path, "~", homeDir, 1)
		}
	}
	return filepath.Clean(os.ExpandEnv(path))
}

func defaultAppDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".witnessd"
	}
	return filepath.Join(homeDir, ".witnessd")
}

func defaultFlags() *Flags {
	return &Flags{
		ConfigFile:         defaultConfigFile,
		AppDir:             defaultDataDir,
		LogDir:             defaultLogDir,
		DebugLevel:         defaultLogLevel,
		LogRotateSizeKB:    logger.DefaultRotation.ThresholdKB,
		LogMaxRolls:        logger.DefaultRotation.MaxRolls,
		CatchupRateLimit:   defaultCatchupRateLimit,
		CatchupBurst:       defaultCatchupBurst,
		MaxCatchupSessions: defaultMaxCatchupSessions,
		MaxMessageSize:     defaultMaxMessageSize,
		CacheSize:          defaultCacheSize,
	}
}

// LoadConfig initializes and parses the config using a config file and
// command line options.
//
// The configuration proceeds as follows:
// 	1) Start with a default config with sane settings
// 	2) Pre-parse the command line to check for an alternative config file
// 	3) Load configuration file overwriting defaults with any specified options
// 	4) Parse CLI options and overwrite/add any specified options
//
// The above results in witnessd functioning properly without any config
// settings while still allowing the user to override settings with config
// files and command line options. Command line options always take
// precedence.
func LoadConfig(args []string) (*Config, error) {
	cfgFlags := defaultFlags()

	preCfg := *cfgFlags
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	_, err := preParser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, err
		}
	}

	if preCfg.ShowVersion {
		fmt.Println("witnessd version", version.Version())
		os.Exit(0)
	}

	parser := flags.NewParser(cfgFlags, flags.Default)
	if _, err := os.Stat(preCfg.ConfigFile); err == nil || preCfg.ConfigFile != defaultConfigFile {
		err := flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
		if err != nil {
			return nil, errors.Wrapf(err, "error parsing config file %s", preCfg.ConfigFile)
		}
	}

	// Parse command line options again to ensure they take precedence.
	_, err = parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}

	cfg := &Config{Flags: cfgFlags}
	err = cfg.resolve()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) resolve() error {
	err := cfg.ResolveNetwork()
	if err != nil {
		return err
	}
	params := cfg.NetParams()

	// Every network gets its own data and log directories
	cfg.AppDir = filepath.Join(cleanAndExpandPath(cfg.AppDir), params.Name)
	cfg.LogDir = filepath.Join(cleanAndExpandPath(cfg.LogDir), params.Name)
	cfg.LogFile = filepath.Join(cfg.LogDir, defaultLogFilename)
	cfg.ErrLogFile = filepath.Join(cfg.LogDir, defaultErrLogFilename)

	err = logger.ParseAndSetLogLevels(cfg.DebugLevel)
	if err != nil {
		return err
	}
	if cfg.LogRotateSizeKB <= 0 || cfg.LogMaxRolls < 0 {
		return errors.Errorf("invalid log rotation of %d KB with %d rolls", cfg.LogRotateSizeKB, cfg.LogMaxRolls)
	}

	if len(cfg.GRPCListeners) == 0 {
		cfg.GRPCListeners = []string{net.JoinHostPort("", params.DefaultGRPCPort)}
	}
	if cfg.APIListener == "" {
		cfg.APIListener = net.JoinHostPort("localhost", params.DefaultAPIPort)
	}
	for _, listener := range append([]string{cfg.APIListener}, cfg.GRPCListeners...) {
		_, _, err := net.SplitHostPort(listener)
		if err != nil {
			return errors.Wrapf(err, "invalid listen address %s", listener)
		}
	}
	if cfg.ConnectPeer != "" {
		_, _, err := net.SplitHostPort(cfg.ConnectPeer)
		if err != nil {
			cfg.ConnectPeer = net.JoinHostPort(cfg.ConnectPeer, params.DefaultGRPCPort)
		}
	}

	err = cfg.resolveWitnesses()
	if err != nil {
		return err
	}

	if cfg.MaxHashTreeSpan == 0 {
		cfg.MaxHashTreeSpan = params.MaxHashTreeSpan
	}
	if cfg.MaxHashTreeBalls == 0 {
		cfg.MaxHashTreeBalls = params.MaxHashTreeBalls
	}
	if cfg.MaxHashTreeBalls < 0 {
		return errors.Errorf("maxhashtreeballs must be positive, got %d", cfg.MaxHashTreeBalls)
	}
	if cfg.CatchupRateLimit <= 0 || cfg.CatchupBurst <= 0 {
		return errors.Errorf("catchupratelimit and catchupburst must be positive")
	}
	if cfg.MaxCatchupSessions <= 0 {
		return errors.Errorf("maxcatchupsessions must be positive, got %d", cfg.MaxCatchupSessions)
	}
	if cfg.Profile != "" {
		profilePort, err := strconv.Atoi(cfg.Profile)
		if err != nil || profilePort < 1024 || profilePort > 65535 {
			return errors.Errorf("the profile port must be between 1024 and 65535, got %s", cfg.Profile)
		}
	}
	if cfg.MaxMessageSize <= 0 {
		return errors.Errorf("maxmessagesize must be positive, got %d", cfg.MaxMessageSize)
	}
	return nil
}

// resolveWitnesses defaults the witness list to the genesis witnesses and
// sorts it
func (cfg *Config) resolveWitnesses() error {
	params := cfg.NetParams()
	if len(cfg.Witnesses) == 0 {
		cfg.Witnesses = append([]string(nil), params.GenesisWitnesses...)
		return nil
	}
	if len(cfg.Witnesses) != params.CountWitnesses {
		return errors.Errorf("expected %d witnesses, got %d", params.CountWitnesses, len(cfg.Witnesses))
	}

	witnesses := append([]string(nil), cfg.Witnesses...)
	sort.Strings(witnesses)
	for i := 1; i < len(witnesses); i++ {
		if witnesses[i] == witnesses[i-1] {
			return errors.Errorf("witness %s appears more than once", witnesses[i])
		}
	}
	cfg.Witnesses = witnesses
	return nil
}
