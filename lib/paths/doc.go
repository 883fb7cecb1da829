// Package paths resolves where the local database file lives and makes sure
// its directory exists.
//
// The directory is taken from the explicit override, then from $DBPATH (joined
// onto the home directory unless absolute), then defaults to $HOME/moniker.
// The file name is taken from the override, then $DBNAME, then "names.db".
package paths
