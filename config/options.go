package config

import "time"

func WithConfig(config *Config) ConfigFunc {
	return func(c *Config) {
		*c = *config
	}
}

func WithVariants(v ...string) ConfigFunc {
	return func(c *Config) {
		c.Variants = v
	}
}

func WithThreads(n ...int) ConfigFunc {
	return func(c *Config) {
		c.Threads = n
	}
}

func WithIterations(n int) ConfigFunc {
	return func(c *Config) {
		c.Iterations = n
	}
}

func WithRepeat(n int) ConfigFunc {
	return func(c *Config) {
		c.Repeat = n
	}
}

func WithRepetitions(n int) ConfigFunc {
	return func(c *Config) {
		c.Repetitions = n
	}
}

func WithMinTime(d time.Duration) ConfigFunc {
	return func(c *Config) {
		c.MinTime = d
	}
}

func WithCPUTime(v bool) ConfigFunc {
	return func(c *Config) {
		c.CPUTime = v
	}
}

func WithLockThreads(v bool) ConfigFunc {
	return func(c *Config) {
		c.LockThreads = v
	}
}

func WithOSYield(v bool) ConfigFunc {
	return func(c *Config) {
		c.OSYield = v
	}
}

func WithMaxProcs(n int) ConfigFunc {
	return func(c *Config) {
		c.MaxProcs = n
	}
}

func WithFormat(f string) ConfigFunc {
	return func(c *Config) {
		c.Format = f
	}
}

func WithMetric(m string) ConfigFunc {
	return func(c *Config) {
		c.Metric = m
	}
}

func WithOutput(path string) ConfigFunc {
	return func(c *Config) {
		c.Output = path
	}
}

func WithGops(addr string) ConfigFunc {
	return func(c *Config) {
		c.Gops = addr
	}
}

func WithLogLevel(level string) ConfigFunc {
	return func(c *Config) {
		c.Log.Level = level
	}
}

func WithLogFile(path string) ConfigFunc {
	return func(c *Config) {
		c.Log.File = path
	}
}

func WithKafka(topic string, brokers ...string) ConfigFunc {
	return func(c *Config) {
		c.Kafka.Topic = topic
		c.Kafka.Brokers = brokers
	}
}

func WithMongoURI(uri string) ConfigFunc {
	return func(c *Config) {
		c.Mongo.URI = uri
	}
}
