package button

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPresser_DropsBounces(t *testing.T) {
	n := 0
	p := &presser{onPress: func() { n++ }}

	p.press(time.Second)
	p.press(time.Second + 10*time.Millisecond)
	p.press(time.Second + 200*time.Millisecond)
	require.Equal(t, 1, n)

	p.press(time.Second + minGap)
	require.Equal(t, 2, n)
}

func TestPresser_NilHandler(t *testing.T) {
	p := &presser{}
	require.NotPanics(t, func() { p.press(0) })
}

func TestNew_Disabled(t *testing.T) {
	b, err := New(Config{}, nil)
	require.NoError(t, err)
	require.Nil(t, b)
}
