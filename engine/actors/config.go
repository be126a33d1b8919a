package actors

import (
	"os"
	"time"

	"agewitness/engine/library"
	"github.com/spf13/viper"
)

// InitConfig sets up our Viper config object
func InitConfig(config *viper.Viper) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		library.LogCLI(err.Error(), 0)
	}
	config.SetDefault("rootDir", homeDir+"/agewitness/")
	config.SetConfigType("yaml")
	config.SetConfigFile(config.GetString("rootDir") + "config.yaml")
	err = config.ReadInConfig()
	if err != nil {
		library.LogCLI(err.Error(), 4)
	}
	config.SetDefault("flatFileDir", "data/")
	//flatfile keeps one JSON snapshot per store, badger keeps one LSM tree per store
	config.SetDefault("storeBackend", "flatfile")
	config.SetDefault("minimumFreeSpaceMB", 64)
	config.SetDefault("logLevel", 4)
	config.SetDefault("doNotPublish", false)
	config.SetDefault("relays", []string{"wss://nostr.688.org", "wss://nos.lol", "wss://relay.damus.io"})
	config.SetDefault("releaseDate", "2017-11-11")
	config.SetDefault("clockSkewTolerance", "24h")
	config.SetDefault("challengeTimeout", "30s")
	config.SetDefault("republishMinDelay", "20s")
	config.SetDefault("republishMaxDelay", "60s")
	config.SetDefault("nonFiatCurrencies", []string{"BTC", "BSQ"})
	config.SetDefault("chargeBackRiskMethods", []string{})
	//hex keys of the arbitrators whose signed witnesses we accept, empty accepts any valid signature
	config.SetDefault("arbitrators", []string{})
	// Create our working directory and config file if not exist
	initRootDir(config)
	touch(config.GetString("rootDir") + "config.yaml")
	err = config.WriteConfig()
	if err != nil {
		library.LogCLI(err.Error(), 0)
	}
}

func initRootDir(conf *viper.Viper) {
	_, err := os.Stat(conf.GetString("rootDir"))
	if os.IsNotExist(err) {
		err = os.Mkdir(conf.GetString("rootDir"), 0755)
		if err != nil {
			library.LogCLI(err, 0)
		}
	}
}

func touch(path string) {
	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		library.LogCLI(err, 1)
		return
	}
	f.Close()
}

var conf *viper.Viper

func MakeOrGetConfig() *viper.Viper {
	return conf
}

func SetConfig(config *viper.Viper) {
	conf = config
}

// Settings is the typed view of the config that constructors take, so nothing below cmd reads viper.
type Settings struct {
	RootDir               string
	FlatFileDir           string
	StoreBackend          string
	MinimumFreeSpaceMB    uint64
	LogLevel              int
	DoNotPublish          bool
	Relays                []string
	ReleaseDate           time.Time
	ClockSkewTolerance    time.Duration
	ChallengeTimeout      time.Duration
	RepublishMinDelay     time.Duration
	RepublishMaxDelay     time.Duration
	NonFiatCurrencies     []string
	ChargeBackRiskMethods []string
	Arbitrators           []string
}

func LoadSettings(config *viper.Viper) Settings {
	s := Settings{
		RootDir:               config.GetString("rootDir"),
		FlatFileDir:           config.GetString("flatFileDir"),
		StoreBackend:          config.GetString("storeBackend"),
		MinimumFreeSpaceMB:    config.GetUint64("minimumFreeSpaceMB"),
		LogLevel:              config.GetInt("logLevel"),
		DoNotPublish:          config.GetBool("doNotPublish"),
		Relays:                config.GetStringSlice("relays"),
		ReleaseDate:           WitnessReleaseDate,
		ClockSkewTolerance:    durationOr(config, "clockSkewTolerance", library.Day),
		ChallengeTimeout:      durationOr(config, "challengeTimeout", 30*time.Second),
		RepublishMinDelay:     durationOr(config, "republishMinDelay", 20*time.Second),
		RepublishMaxDelay:     durationOr(config, "republishMaxDelay", 60*time.Second),
		NonFiatCurrencies:     config.GetStringSlice("nonFiatCurrencies"),
		ChargeBackRiskMethods: config.GetStringSlice("chargeBackRiskMethods"),
		Arbitrators:           config.GetStringSlice("arbitrators"),
	}
	if d := config.GetString("releaseDate"); len(d) > 0 {
		release, err := time.Parse("2006-01-02", d)
		if err != nil {
			library.LogCLI("invalid releaseDate "+d+", using the default", 2)
		} else {
			s.ReleaseDate = release
		}
	}
	if s.RepublishMaxDelay <= s.RepublishMinDelay {
		library.LogCLI("republishMaxDelay must be after republishMinDelay, using 20s-60s", 2)
		s.RepublishMinDelay = 20 * time.Second
		s.RepublishMaxDelay = 60 * time.Second
	}
	return s
}

func durationOr(config *viper.Viper, key string, fallback time.Duration) time.Duration {
	d := config.GetDuration(key)
	if d <= 0 {
		return fallback
	}
	return d
}
