/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var profileMode string
var stopProfile func()

var rootCmd = &cobra.Command{
	Use: "ibflow",
	Short: "Immersed boundary solver for fractional-step Navier-Stokes",
	Long: `ibflow couples an immersed-boundary subsystem to a fractional-step
	pressure-projection solver on a distributed unstructured cell-centered grid.

	ibflow run -i run.yaml`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch profileMode {
		case "cpu":
			stopProfile = profile.Start(profile.CPUProfile).Stop
		case "mem":
			stopProfile = profile.Start(profile.MemProfile).Stop
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if stopProfile != nil {
			stopProfile()
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main. It only needs to
// happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ibflow.yaml)")
	rootCmd.PersistentFlags().StringVar(&profileMode, "profile", "", "enable profiling: \"cpu\" or \"mem\"")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".ibflow")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
